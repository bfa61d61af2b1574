package sanitize

import "testing"

func TestBodyStripsHTML(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "정말 좋은 글이네요", "정말 좋은 글이네요"},
		{"script tag", `좋은 글 <script>alert("x")</script>감사`, "좋은 글 감사"},
		{"bold tag", "<b>강조</b>된 댓글", "강조된 댓글"},
		{"surrounding whitespace", "  댓글입니다  ", "댓글입니다"},
		{"anchor stripped", `<a href="http://evil.example">클릭</a>`, "클릭"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Body(tt.in); got != tt.want {
				t.Errorf("Body(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthorNameCollapsesWhitespace(t *testing.T) {
	p := New()

	if got := p.AuthorName("  홍  길동 "); got != "홍 길동" {
		t.Errorf("AuthorName = %q, want %q", got, "홍 길동")
	}
	if got := p.AuthorName("<i>nick</i>name"); got != "nickname" {
		t.Errorf("AuthorName = %q, want %q", got, "nickname")
	}
}
