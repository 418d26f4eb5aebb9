package fetch

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestMirrorFromEnv(t *testing.T) {
	for _, name := range MirrorEnvVars {
		t.Setenv(name, "")
	}

	g := NewWithT(t)
	g.Expect(MirrorFromEnv()).To(BeEmpty())

	t.Setenv("NODIST_NODE_MIRROR", "https://nodist.example/dist")
	g.Expect(MirrorFromEnv()).To(Equal("https://nodist.example/dist"))

	t.Setenv("NVM_NODEJS_ORG_MIRROR", " https://nvm.example/dist ")
	g.Expect(MirrorFromEnv()).To(Equal("https://nvm.example/dist"))

	t.Setenv("NODE_MIRROR", "https://node.example/dist")
	g.Expect(MirrorFromEnv()).To(Equal("https://node.example/dist"))
}

func TestResolveMirror(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{name: "default", want: DefaultMirror},
		{name: "all_empty", candidates: []string{"", "  "}, want: DefaultMirror},
		{name: "first_wins", candidates: []string{"https://a/dist", "https://b/dist"}, want: "https://a/dist"},
		{name: "skips_empty", candidates: []string{"", "https://b/dist/"}, want: "https://b/dist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			g.Expect(ResolveMirror(tt.candidates...)).To(Equal(tt.want))
		})
	}
}
