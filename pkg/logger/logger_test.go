package logger

import (
	"strings"
	"testing"

	"github.com/cheekybits/is"
	"go.uber.org/zap"
)

func TestHTML(t *testing.T) {
	is := is.New(t)
	l := New()
	l.Info("[gvd-add] inserted", zap.Int("face", 7))
	l.Warn("[gvd-grow] tie <resolved>")

	html := l.HTML()
	is.True(strings.HasPrefix(html, "<pre>"))
	is.True(strings.HasSuffix(html, "</pre>"))
	is.True(strings.Contains(html, `<span style="color: green;">info</span>`))
	is.True(strings.Contains(html, `<span style="color: yellow;">warn</span>`))
	is.True(strings.Contains(html, "&lt;resolved&gt;"))
	is.True(strings.Contains(html, `"face": 7`))

	l.ClearLogs()
	is.Equal(l.HTML(), "<pre></pre>")
}

func TestQuietDropsInfo(t *testing.T) {
	is := is.New(t)
	l := NewQuiet()
	l.Info("hidden")
	l.Debug("hidden")
	is.Equal(l.String(), "")
	l.Warn("shown")
	is.True(strings.Contains(l.String(), "shown"))
}
