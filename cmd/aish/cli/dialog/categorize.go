package dialog

import (
	"fmt"
	"io"

	"github.com/aishell/cli/cmd/aish/cli/category"
	"github.com/aishell/cli/cmd/aish/cli/lineedit"
)

// CategorizePhase identifies the categorization machine's current step.
type CategorizePhase string

const (
	// CategorizeChooseVariant asks which command text to categorize when
	// the executed command differs from what the user originally typed.
	CategorizeChooseVariant CategorizePhase = "choose_variant"
	// CategorizeEnterText collects a replacement command string.
	CategorizeEnterText CategorizePhase = "enter_text"
	// CategorizeChooseCategory asks for the execution category.
	CategorizeChooseCategory CategorizePhase = "choose_category"
)

// CategorizeAction is the resolution of a categorization dialog.
type CategorizeAction int

const (
	// CategorizePending means the dialog is still waiting for input.
	CategorizePending CategorizeAction = iota
	// CategorizePersist stores the assignment, then the caller executes.
	CategorizePersist
	// CategorizeRunOnce executes under the default category, not persisted.
	CategorizeRunOnce
	// CategorizeCancel aborts execution entirely.
	CategorizeCancel
)

// CategorizeResult is returned from every keystroke handed to the machine.
type CategorizeResult struct {
	Done     bool
	Action   CategorizeAction
	Category category.Kind
	Command  string
}

// Categorize walks the user through assigning an execution category to a
// command whose signature has no stored assignment. It never executes
// anything; the caller dispatches on the result.
type Categorize struct {
	executed   string // command approved for execution (possibly translated)
	original   string // raw user input
	chosen     string // command text being categorized
	phase      CategorizePhase
	out        io.Writer
	text       lineedit.Buffer
	defaultCat category.Kind
}

// NewCategorize creates the dialog and renders its opening prompt. When the
// executed command equals the original input, the variant step is skipped.
func NewCategorize(out io.Writer, executed, original string, defaultCat category.Kind) *Categorize {
	c := &Categorize{
		executed:   executed,
		original:   original,
		chosen:     executed,
		out:        out,
		defaultCat: defaultCat,
	}
	fmt.Fprintf(out, "\r\nno category stored for %q\r\n", category.Signature(executed))
	if executed != original {
		c.phase = CategorizeChooseVariant
	} else {
		c.phase = CategorizeChooseCategory
	}
	c.prompt()
	return c
}

// Phase returns the current step, for logging.
func (c *Categorize) Phase() CategorizePhase {
	return c.phase
}

func (c *Categorize) prompt() {
	switch c.phase {
	case CategorizeChooseVariant:
		fmt.Fprintf(c.out, "categorize which command?\r\n")
		fmt.Fprintf(c.out, "  [1] %s\r\n", c.executed)
		fmt.Fprintf(c.out, "  [2] %s\r\n", c.original)
		fmt.Fprintf(c.out, "  [3] enter a new command  [c]ancel: ")
	case CategorizeEnterText:
		fmt.Fprintf(c.out, "command: %s", c.text.String())
	case CategorizeChooseCategory:
		fmt.Fprintf(c.out, "category for %q:\r\n", c.chosen)
		fmt.Fprintf(c.out, "  [1] %s (run inline)\r\n", category.Simple)
		fmt.Fprintf(c.out, "  [2] %s (isolated, output after completion)\r\n", category.SemiInteractive)
		fmt.Fprintf(c.out, "  [3] %s (isolated, full control)\r\n", category.InteractiveTUI)
		fmt.Fprintf(c.out, "  [m]odify command  [d] run once as %s  [c]ancel: ", c.defaultCat)
	}
}

// HandleKey advances the machine with one keystroke.
func (c *Categorize) HandleKey(key byte) CategorizeResult {
	switch c.phase {
	case CategorizeChooseVariant:
		return c.handleVariantKey(key)
	case CategorizeEnterText:
		return c.handleTextKey(key)
	case CategorizeChooseCategory:
		return c.handleCategoryKey(key)
	}
	return CategorizeResult{Action: CategorizePending}
}

func (c *Categorize) handleVariantKey(key byte) CategorizeResult {
	switch key {
	case '1':
		fmt.Fprintf(c.out, "1\r\n")
		c.chosen = c.executed
		c.phase = CategorizeChooseCategory
	case '2':
		fmt.Fprintf(c.out, "2\r\n")
		c.chosen = c.original
		c.phase = CategorizeChooseCategory
	case '3':
		fmt.Fprintf(c.out, "3\r\n")
		c.text.Load("")
		c.phase = CategorizeEnterText
	case 'c', 'C', ctrlC:
		return c.Cancel()
	default:
		fmt.Fprintf(c.out, "\r\n")
	}
	c.prompt()
	return CategorizeResult{Action: CategorizePending}
}

func (c *Categorize) handleTextKey(key byte) CategorizeResult {
	switch {
	case key == '\r' || key == '\n':
		fmt.Fprintf(c.out, "\r\n")
		line := c.text.Take()
		if line == "" {
			c.prompt()
			return CategorizeResult{Action: CategorizePending}
		}
		c.chosen = line
		c.phase = CategorizeChooseCategory
		c.prompt()

	case key == 0x7f || key == 0x08: // backspace / delete
		if c.text.Backspace() {
			fmt.Fprintf(c.out, "\b \b")
		}

	case key == ctrlC:
		return c.Cancel()

	case key >= 0x20 && key != 0x7f:
		c.text.Append(key)
		fmt.Fprintf(c.out, "%c", key)
	}
	return CategorizeResult{Action: CategorizePending}
}

func (c *Categorize) handleCategoryKey(key byte) CategorizeResult {
	switch key {
	case '1', '2', '3':
		kinds := map[byte]category.Kind{
			'1': category.Simple,
			'2': category.SemiInteractive,
			'3': category.InteractiveTUI,
		}
		fmt.Fprintf(c.out, "%c\r\n", key)
		return CategorizeResult{
			Done:     true,
			Action:   CategorizePersist,
			Category: kinds[key],
			Command:  c.chosen,
		}

	case 'm', 'M':
		fmt.Fprintf(c.out, "m\r\n")
		c.text.Load(c.chosen)
		c.phase = CategorizeEnterText
		c.prompt()

	case 'd', 'D':
		fmt.Fprintf(c.out, "d\r\n")
		return CategorizeResult{
			Done:     true,
			Action:   CategorizeRunOnce,
			Category: c.defaultCat,
			Command:  c.chosen,
		}

	case 'c', 'C', ctrlC:
		return c.Cancel()

	default:
		fmt.Fprintf(c.out, "\r\n")
		c.prompt()
	}
	return CategorizeResult{Action: CategorizePending}
}

// Cancel resolves the dialog as cancelled; execution is aborted entirely.
func (c *Categorize) Cancel() CategorizeResult {
	fmt.Fprintf(c.out, "\r\n")
	return CategorizeResult{Done: true, Action: CategorizeCancel}
}
