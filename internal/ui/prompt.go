package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrCanceled is returned when the user leaves a prompt without choosing.
var ErrCanceled = errors.New("selection canceled")

// Option is one choice offered by PromptSelect and Pick.
type Option struct {
	ID     string
	Name   string
	Detail string
}

func (o Option) label() string {
	if o.Detail == "" {
		return o.Name
	}
	return fmt.Sprintf("%s (%s)", o.Name, o.Detail)
}

// PromptSelect prints a numbered menu to out and reads one choice from in.
// The answer may be a number or an option's name or ID.
func PromptSelect(in io.Reader, out io.Writer, prompt string, options []Option) (*Option, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no options to select")
	}

	fmt.Fprintln(out, prompt)
	for i, opt := range options {
		fmt.Fprintf(out, "%2d) %s\n", i+1, opt.label())
	}
	fmt.Fprint(out, "Select (number or name) or press Enter to cancel: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, ErrCanceled
		}
		return nil, err
	}
	idx, err := parseChoice(strings.TrimSpace(line), options)
	if err != nil {
		return nil, err
	}
	return &options[idx], nil
}

func parseChoice(answer string, options []Option) (int, error) {
	if answer == "" {
		return 0, ErrCanceled
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return 0, fmt.Errorf("selection out of range: %d", n)
		}
		return n - 1, nil
	}
	match := -1
	for i, opt := range options {
		if opt.ID == answer {
			return i, nil
		}
		if strings.EqualFold(opt.Name, answer) {
			if match >= 0 {
				return 0, fmt.Errorf("%q matches more than one option", answer)
			}
			match = i
		}
	}
	if match < 0 {
		return 0, fmt.Errorf("no option named %q", answer)
	}
	return match, nil
}
