package report

import (
	"errors"
	"fmt"

	"github.com/liftreport/liftreport/internal/dataset"
)

// Message is the user-facing form of a failed report.
type Message struct {
	Title    string
	Detail   string
	NotFound bool
}

// Describe translates err into a message. A missing dataset gets a
// dedicated "not found" message naming dataPath; anything else is generic.
func Describe(err error, dataPath string) Message {
	if errors.Is(err, dataset.ErrDatasetMissing) {
		return Message{
			Title:    "Data file not found!",
			Detail:   fmt.Sprintf("Please ensure %s exists in your project directory.", dataPath),
			NotFound: true,
		}
	}

	return Message{
		Title:  fmt.Sprintf("Error: %v", err),
		Detail: "Please check your data file and try again.",
	}
}

func (m Message) String() string {
	return m.Title + "\n" + m.Detail
}
