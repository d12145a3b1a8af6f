package gpio

import (
	"fmt"
	"sync"
	"time"

	gpiocdev "github.com/warthog618/go-gpiocdev"
)

// cdevChip implements Chip on top of the Linux GPIO character device.
type cdevChip struct {
	chip  *gpiocdev.Chip
	mu    sync.Mutex
	lines []*gpiocdev.Line
}

func openCdev(name string) (*cdevChip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("caseguard"))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", name, err)
	}
	return &cdevChip{chip: chip}, nil
}

// RequestOutput claims a pin as an output driven to the initial level.
func (c *cdevChip) RequestOutput(pin int, initial Level) (Output, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(int(initial)))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	c.track(line)
	return &cdevOutput{line: line}, nil
}

// RequestButton claims a pin as a pulled-up input with falling-edge events.
func (c *cdevChip) RequestButton(pin int, debounce time.Duration, handler func()) (Input, error) {
	line, err := c.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			handler()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	c.track(line)
	return &cdevInput{line: line}, nil
}

// Close releases all requested lines and the chip itself.
func (c *cdevChip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.lines {
		line.Close()
	}
	c.lines = nil
	return c.chip.Close()
}

func (c *cdevChip) track(line *gpiocdev.Line) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

type cdevOutput struct {
	line *gpiocdev.Line
}

func (o *cdevOutput) Set(level Level) error {
	return o.line.SetValue(int(level))
}

func (o *cdevOutput) Close() error {
	return o.line.Close()
}

type cdevInput struct {
	line *gpiocdev.Line
}

func (i *cdevInput) Value() (Level, error) {
	v, err := i.line.Value()
	if err != nil {
		return Low, err
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

func (i *cdevInput) Close() error {
	return i.line.Close()
}
