// Package spam implements the deterministic rule-based classifier that screens
// comment bodies before they are persisted.
//
// The classifier is an ordered chain of independent rules; the first rule that
// matches decides the verdict, so rule order is a documented contract: a
// 4-character body containing a banned word is reported as too short, not as a
// banned word, because length is checked first.
package spam

import (
	"regexp"
	"strings"

	"github.com/hanulzine/webzine/internal/models"
)

// Default thresholds, overridable via options.
const (
	// DefaultMinLength is the minimum trimmed body length accepted.
	DefaultMinLength = 5
	// DefaultRepeatThreshold is the longest allowed run of one character.
	DefaultRepeatThreshold = 10
)

// Fixed user-facing rejection messages, one per rule.
const (
	MsgTooShort      = "댓글이 너무 짧습니다."
	MsgBannedWord    = "댓글에 사용할 수 없는 단어가 포함되어 있습니다."
	MsgRepeatedChars = "같은 문자를 과도하게 반복할 수 없습니다."
	MsgContainsURL   = "댓글에 링크를 포함할 수 없습니다."
	MsgContainsPhone = "댓글에 전화번호를 포함할 수 없습니다."
)

// defaultBannedWords is matched as substrings against the lower-cased body.
// Deliberately not token-boundary-aware: permissive to reject.
var defaultBannedWords = []string{
	"씨발", "시발", "씨빨", "병신", "개새끼", "새끼", "지랄", "좆",
	"니미", "꺼져", "섹스", "야동", "성인물",
	"카지노", "바카라", "토토", "도박", "대출", "홍보대행",
	"fuck", "shit", "bitch", "asshole", "viagra", "casino", "jackpot",
}

var (
	// urlPattern matches http(s) URLs, www-prefixed hosts, and bare
	// domain.tld tokens.
	urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[a-z0-9][a-z0-9-]*\.(?:com|net|org|io|co|kr|me|xyz|info|biz|tv|shop)\b)`)
	// phonePattern matches common delimited numeric phone shapes such as
	// 010-1234-5678 or 02.123.4567.
	phonePattern = regexp.MustCompile(`\d{2,3}[.\- ]?\d{3,4}[.\- ]?\d{4}`)
)

// Rule is one spam check with its fixed reason code and rejection message.
type Rule struct {
	Reason  models.ReasonCode
	Message string
	Matches func(body string) bool
}

// Classifier runs an ordered rule chain over candidate comment bodies.
// It has no mutable state after construction and is safe for concurrent use.
type Classifier struct {
	minLength       int
	repeatThreshold int
	bannedWords     []string
	rules           []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMinLength overrides the minimum accepted body length.
func WithMinLength(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.minLength = n
		}
	}
}

// WithRepeatThreshold overrides the repeated-character run threshold.
func WithRepeatThreshold(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.repeatThreshold = n
		}
	}
}

// WithBannedWords replaces the default banned word list.
func WithBannedWords(words []string) Option {
	return func(c *Classifier) {
		c.bannedWords = words
	}
}

// NewClassifier creates a classifier with the default rule chain:
// minimum length, banned words, repeated characters, URL, phone number.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		minLength:       DefaultMinLength,
		repeatThreshold: DefaultRepeatThreshold,
		bannedWords:     defaultBannedWords,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = []Rule{
		{models.ReasonTooShort, MsgTooShort, c.tooShort},
		{models.ReasonBannedWord, MsgBannedWord, c.containsBannedWord},
		{models.ReasonRepeatedChars, MsgRepeatedChars, c.hasRepeatedRun},
		{models.ReasonContainsURL, MsgContainsURL, containsURL},
		{models.ReasonContainsPhone, MsgContainsPhone, containsPhone},
	}
	return c
}

// Classify runs the rule chain over body, short-circuiting on the first match.
func (c *Classifier) Classify(body string) models.ClassificationVerdict {
	for _, rule := range c.rules {
		if rule.Matches(body) {
			return models.ClassificationVerdict{
				IsSpam:  true,
				Reason:  rule.Reason,
				Message: rule.Message,
			}
		}
	}
	return models.ClassificationVerdict{IsSpam: false, Reason: models.ReasonNone}
}

func (c *Classifier) tooShort(body string) bool {
	normalized := strings.ToLower(strings.TrimSpace(body))
	return len([]rune(normalized)) < c.minLength
}

func (c *Classifier) containsBannedWord(body string) bool {
	lowered := strings.ToLower(body)
	for _, word := range c.bannedWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports whether any single character repeats consecutively
// more than the threshold. Single pass over runes with a running counter.
func (c *Classifier) hasRepeatedRun(body string) bool {
	var prev rune
	run := 0
	for _, r := range body {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run > c.repeatThreshold {
			return true
		}
	}
	return false
}

func containsURL(body string) bool {
	return urlPattern.MatchString(body)
}

func containsPhone(body string) bool {
	return phonePattern.MatchString(body)
}
