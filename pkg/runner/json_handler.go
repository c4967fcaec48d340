package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/bytedance/sonic"
)

// JSONHandler implements IOHandler for JSON Lines communication. Each input line is
// either a JSON string, an object with an "input" field or raw text. Each reply is one
// TurnResponse object per line.
type JSONHandler struct {
	Reader *bufio.Reader
	Writer io.Writer
}

type jsonInput struct {
	Input string `json:"input"`
}

type systemMessage struct {
	System string `json:"system"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{Reader: bufio.NewReader(r), Writer: w}
}

// Output implements IOHandler.
func (h *JSONHandler) Output(ctx context.Context, resp *domain.TurnResponse) error {
	return h.writeLine(resp)
}

// SystemOutput implements IOHandler.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.writeLine(systemMessage{System: msg})
}

// Input implements IOHandler.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var s string
	if err := sonic.UnmarshalString(text, &s); err == nil {
		return s, nil
	}
	var obj jsonInput
	if strings.HasPrefix(text, "{") {
		if err := sonic.UnmarshalString(text, &obj); err == nil {
			return obj.Input, nil
		}
	}
	return text, nil
}

func (h *JSONHandler) writeLine(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = h.Writer.Write(append(data, '\n'))
	return err
}
