package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"graphtrust/internal/events"
	"graphtrust/internal/events/kafka"
)

type pendingEvent struct {
	key   []byte
	value []byte
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish [file]",
		Short: "Publish newline-delimited JSON events to the configured topic",
		Long: `publish reads one event envelope per line from file, or stdin when no
file is given, and sends them to KAFKA_TOPIC. Every line is checked before
anything is sent.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Kafka.Enabled() {
				return errors.New("KAFKA_BROKERS is not set")
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			pending, err := readEvents(in)
			if err != nil {
				return err
			}

			producer, err := kafka.NewProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
			if err != nil {
				return err
			}
			defer producer.Close()

			for i, ev := range pending {
				if err := producer.Publish(cmd.Context(), ev.key, ev.value); err != nil {
					return fmt.Errorf("event %d: %w", i+1, err)
				}
			}
			a.logger.Info("published events", "count", len(pending), "topic", a.cfg.Kafka.Topic)
			return printJSON(cmd.OutOrStdout(), map[string]int{"published": len(pending)})
		},
	}
}

// readEvents validates every line and keys it by request id when one is set.
func readEvents(r io.Reader) ([]pendingEvent, error) {
	var out []pendingEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var head struct {
			Type      string `json:"type"`
			RequestID string `json:"request_id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !events.KnownType(head.Type) {
			return nil, fmt.Errorf("line %d: unknown event type %q", line, head.Type)
		}
		ev := pendingEvent{value: bytes.Clone(raw)}
		if head.RequestID != "" {
			ev.key = []byte(head.RequestID)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no events to publish")
	}
	return out, nil
}
