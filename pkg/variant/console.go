package variant

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ConsoleChooser asks an operator to pick a spelling. Invalid input is
// re-prompted until a valid number is entered or the input ends.
type ConsoleChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleChooser creates a chooser reading from in and prompting on out.
func NewConsoleChooser(in io.Reader, out io.Writer) *ConsoleChooser {
	return &ConsoleChooser{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Choose implements Chooser.
func (c *ConsoleChooser) Choose(standard string, candidates []string) (int, error) {
	fmt.Fprintf(c.out, "Standard form '%s' has multiple options:\n", standard)
	for i, n := range candidates {
		fmt.Fprintf(c.out, "%d. '%s'\n", i+1, n)
	}

	for {
		fmt.Fprintf(c.out, "Select the number to keep for '%s': ", standard)
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return 0, fmt.Errorf("reading selection: %w", err)
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		switch {
		case convErr != nil:
			fmt.Fprintln(c.out, "Invalid input. Please enter a number.")
		case n < 1 || n > len(candidates):
			fmt.Fprintln(c.out, "Invalid choice. Please select a valid number.")
		default:
			return n - 1, nil
		}

		if err != nil {
			return 0, fmt.Errorf("reading selection: %w", err)
		}
	}
}
