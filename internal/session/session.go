// Package session runs the line-based chat loop on top of the recommendation pipeline.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cinema-sage/internal/common/metrics"
)

const (
	Banner = "Hello! I am a chat bot that can help you find movies to watch.\n" +
		"Give me a genre, a year or the name of a member of the cast or crew, and I will do my best to give you a recommendation.\n" +
		"I am also contractually obligated to say that \"This product uses the TMDB API but is not endorsed or certified by TMDB.\"\n" +
		"\n" +
		"How can I help you?"
	FollowUp  = "Can I help you find anything else?"
	Farewell  = "Thanks for chatting!"
	Apology   = "Whoops, it seems like something has gone wrong.\nPlease try again later."
	ExitInput = "no"
)

// Pipeline answers one request.
type Pipeline interface {
	HandleRequest(ctx context.Context, text string) (string, error)
}

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

type Options struct {
	In       io.Reader
	Out      io.Writer
	Pipeline Pipeline
	Throttle *Throttle
	Retrier  *Retrier
	Logger   Logger
	// Clock stamps input lines on arrival; defaults to time.Now.
	Clock func() time.Time
}

// Session reads requests line by line and writes one reply block per
// admitted line, in order.
type Session struct {
	in       io.Reader
	out      io.Writer
	pipeline Pipeline
	throttle *Throttle
	retrier  *Retrier
	logger   Logger
	clock    func() time.Time
}

func New(opts Options) *Session {
	if opts.Throttle == nil {
		opts.Throttle = NewThrottle(time.Second)
	}
	if opts.Retrier == nil {
		opts.Retrier = NewRetrier(3, 100*time.Millisecond)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Session{
		in:       opts.In,
		out:      opts.Out,
		pipeline: opts.Pipeline,
		throttle: opts.Throttle,
		retrier:  opts.Retrier,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}
}

type eventKind int

const (
	eventRequest eventKind = iota
	eventExit
)

type event struct {
	kind eventKind
	text string
}

// Run greets the user and serves requests until the exit keyword, EOF on
// the input, or ctx cancellation. On cancellation the input is closed if it
// is an io.Closer so the reader goroutine can exit; otherwise that goroutine
// stays blocked until the input reaches EOF.
func (s *Session) Run(ctx context.Context) error {
	s.println(Banner)

	done := make(chan struct{})
	defer close(done)

	events := make(chan event, 16)
	readErr := make(chan error, 1)
	go s.read(events, readErr, done)

	for {
		select {
		case <-ctx.Done():
			if c, ok := s.in.(io.Closer); ok {
				_ = c.Close()
			}
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return <-readErr
			}
			if ev.kind == eventExit {
				s.println(Farewell)
				return nil
			}
			s.dispatch(ctx, ev.text)
		}
	}
}

// read classifies lines as they arrive, so the throttle sees arrival times
// rather than the moment the loop gets around to them.
func (s *Session) read(events chan<- event, readErr chan<- error, done <-chan struct{}) {
	defer close(events)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		var ev event
		switch {
		case line == "":
			// blank lines carry no request and do not consume the throttle
			continue
		case strings.EqualFold(line, ExitInput):
			ev = event{kind: eventExit}
		case !s.throttle.AllowAt(s.clock()):
			metrics.SessionThrottled.Inc()
			s.logger.Debug("input dropped by throttle", map[string]interface{}{"input": line})
			continue
		default:
			ev = event{kind: eventRequest, text: line}
		}

		select {
		case events <- ev:
		case <-done:
			readErr <- nil
			return
		}
		if ev.kind == eventExit {
			readErr <- nil
			return
		}
	}
	readErr <- scanner.Err()
}

func (s *Session) dispatch(ctx context.Context, text string) {
	var reply string
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		reply, err = s.pipeline.HandleRequest(ctx, text)
		return err
	})
	if err != nil {
		s.logger.Warn("request failed", map[string]interface{}{
			"input": text,
			"error": err,
		})
		s.println(Apology)
	} else {
		s.println(reply)
	}
	s.println(FollowUp)
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}
