package bot

import (
	"errors"
	"fmt"
)

// ErrRemote marks an error reported by the bot itself rather than by the
// transport. Such errors are not retried.
var ErrRemote = errors.New("bot returned an error")

// Request asks for a move in the position given by FEN.
type Request struct {
	FEN        string `json:"fen"`
	Difficulty string `json:"difficulty"`
	GameID     string `json:"game_id,omitempty"`
}

// Response carries either a move or an error.
type Response struct {
	Move       string  `json:"move,omitempty"` // SAN
	UCI        string  `json:"uci,omitempty"`
	FEN        string  `json:"fen,omitempty"` // position after the move
	Value      float64 `json:"value"`
	Nodes      int64   `json:"nodes"`
	Difficulty string  `json:"difficulty,omitempty"`
	GameID     string  `json:"game_id,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// LambdaEvent is the payload of the Lambda function. When ReplyChannel is
// set the response is also published there over NATS.
type LambdaEvent struct {
	Request
	ReplyChannel string `json:"reply_channel,omitempty"`
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

func (r *Response) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRemote, r.Error)
}
