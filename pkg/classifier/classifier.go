// Package classifier derives a job's input type from the template tags the
// host attached to its input files. File contents are never inspected.
package classifier

import (
	"fmt"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/job"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Result is the outcome of classification
type Result struct {
	Type types.InputType
	// Conflicts lists other known tags seen among the inputs. The selected
	// type is the tag of the last recognised input.
	Conflicts []types.InputType
	// Ignored lists input names whose tag is not a known input type
	Ignored []string
}

// Classify returns the single input type for a job, or an unclassifiable-input
// error when no input carries a recognised tag.
func Classify(inputs []job.InputFile) (*Result, error) {
	res := &Result{}
	seen := make(map[types.InputType]bool)
	var order []types.InputType

	for _, in := range inputs {
		t, ok := types.ParseInputType(strings.TrimSpace(in.Template))
		if !ok {
			res.Ignored = append(res.Ignored, in.Name)
			continue
		}
		res.Type = t
		if !seen[t] {
			seen[t] = true
			order = append(order, t)
		}
	}

	if res.Type == "" {
		return nil, utils.NewUnclassifiableError(
			fmt.Sprintf("unable to deduce input type from %d input file(s)", len(inputs)))
	}

	for _, t := range order {
		if t != res.Type {
			res.Conflicts = append(res.Conflicts, t)
		}
	}
	return res, nil
}
