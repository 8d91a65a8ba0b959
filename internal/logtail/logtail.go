package logtail

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/charmbracelet/lipgloss"
)

// ReadFile returns at most maxLines from the end of the file at path. A
// missing file yields no lines and no error.
func ReadFile(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open log")
	}
	defer func() { _ = file.Close() }()

	return Tail(file, maxLines)
}

// Tail returns the last maxLines lines of r in order. maxLines <= 0 returns
// every line.
func Tail(r io.Reader, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "read log")
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read log")
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time    string
	Level   string
	Logger  string
	Message string
	Fields  map[string]any
}

// reserved keys written by the encoder itself.
var reserved = map[string]bool{
	"ts": true, "level": true, "logger": true, "msg": true, "caller": true, "stacktrace": true,
}

// Parse decodes a JSON log line. ok is false for anything that is not a JSON
// object.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Time:    stringField(raw, "ts"),
		Level:   strings.ToUpper(stringField(raw, "level")),
		Logger:  stringField(raw, "logger"),
		Message: stringField(raw, "msg"),
		Fields:  make(map[string]any),
	}
	for k, v := range raw {
		if !reserved[k] {
			e.Fields[k] = v
		}
	}
	return e, true
}

// Pretty renders a JSON log line as
//
//	<ts> <LEVEL> <logger>: <msg> key=value ...
//
// with fields sorted by key. Lines that are not JSON are returned unchanged.
func Pretty(line string) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}
	return render(e, func(_ string, s string) string { return s })
}

// Colorize is Pretty with the level and field keys styled for a terminal.
func Colorize(line string) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}
	return render(e, func(part string, s string) string {
		switch part {
		case "ts":
			return dimStyle.Render(s)
		case "level":
			return levelStyle(e.Level).Render(s)
		case "key":
			return keyStyle.Render(s)
		}
		return s
	})
}

var (
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
)

func levelStyle(level string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return style.Foreground(lipgloss.Color("#FF6B6B"))
	case "WARN":
		return style.Foreground(lipgloss.Color("#FFD700"))
	case "DEBUG":
		return style.Foreground(lipgloss.Color("#87CEEB"))
	default:
		return style.Foreground(lipgloss.Color("#5FD75F"))
	}
}

func render(e Entry, paint func(part, s string) string) string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(paint("ts", e.Time))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(paint("level", fmt.Sprintf("%-5s", e.Level)))
		b.WriteByte(' ')
	}
	if e.Logger != "" {
		b.WriteString(e.Logger)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(paint("key", k))
		b.WriteByte('=')
		b.WriteString(formatValue(e.Fields[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case nil:
		return "null"
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
