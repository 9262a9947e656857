package logger

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes colored console lines into an in-memory buffer so that a
// build's log can be shown next to the diagram it produced.
type ZapLogger struct {
	log *zap.Logger

	mu     sync.Mutex
	logBuf *bytes.Buffer
}

func New() *ZapLogger {
	return newLevel(zap.DebugLevel)
}

// NewQuiet logs warnings and errors only.
func NewQuiet() *ZapLogger {
	return newLevel(zap.WarnLevel)
}

func newLevel(level zapcore.Level) *ZapLogger {
	z := &ZapLogger{logBuf: &bytes.Buffer{}}

	config := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    colorLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	encoder := zapcore.NewConsoleEncoder(config)
	core := zapcore.NewCore(encoder, zapcore.AddSync(lockedWriter{z}), level)

	z.log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return z
}

type lockedWriter struct{ z *ZapLogger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.z.mu.Lock()
	defer w.z.mu.Unlock()
	return w.z.logBuf.Write(p)
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("[2006-01-02 | 15:04:05]"))
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var colorCode string
	switch level {
	case zapcore.DebugLevel:
		colorCode = "\033[36m" // Cyan
	case zapcore.InfoLevel:
		colorCode = "\033[32m" // Green
	case zapcore.WarnLevel:
		colorCode = "\033[33m" // Yellow
	case zapcore.ErrorLevel:
		colorCode = "\033[31m" // Red
	default:
		colorCode = "\033[0m"
	}
	enc.AppendString(colorCode + level.String() + "\033[0m")
}

var ansiCode = regexp.MustCompile(`\033\[(\d+)m`)

// ansiToHTML turns ANSI color codes into inline styled spans inside a <pre>.
func ansiToHTML(input string) string {
	var result strings.Builder
	var lastIndex int
	open := false

	result.WriteString("<pre>")
	for _, match := range ansiCode.FindAllStringSubmatchIndex(input, -1) {
		start, end := match[0], match[1]
		if start > lastIndex {
			result.WriteString(escape(input[lastIndex:start]))
		}

		colorCode := input[match[2]:match[3]]
		if color, ok := colorMap[colorCode]; ok {
			if open {
				result.WriteString("</span>")
			}
			result.WriteString(`<span style="color: ` + color + `;">`)
			open = true
		} else if colorCode == "0" && open {
			result.WriteString("</span>")
			open = false
		}
		lastIndex = end
	}
	if lastIndex < len(input) {
		result.WriteString(escape(input[lastIndex:]))
	}
	if open {
		result.WriteString("</span>")
	}
	result.WriteString("</pre>")
	return result.String()
}

var escape = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace

var colorMap = map[string]string{
	"31": "red",
	"32": "green",
	"33": "yellow",
	"34": "blue",
	"36": "cyan",
}

// HTML renders everything logged so far.
func (z *ZapLogger) HTML() string {
	return ansiToHTML(z.String())
}

// String returns the raw log text, ANSI codes included.
func (z *ZapLogger) String() string {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.logBuf.String()
}

func (z *ZapLogger) ClearLogs() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.logBuf.Reset()
}

func (z *ZapLogger) Info(wrappedMsg string, fields ...zap.Field) {
	z.log.Info(wrappedMsg, fields...)
}

func (z *ZapLogger) Debug(wrappedMsg string, fields ...zap.Field) {
	z.log.Debug(wrappedMsg, fields...)
}

func (z *ZapLogger) Warn(wrappedMsg string, fields ...zap.Field) {
	z.log.Warn(wrappedMsg, fields...)
}

func (z *ZapLogger) Error(wrappedMsg string, fields ...zap.Field) {
	z.log.Error(wrappedMsg, fields...)
}
