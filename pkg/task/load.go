package task

import (
	"fmt"
	"strings"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
)

// Placed pairs an item with the box it became.
type Placed struct {
	OrderID int         `json:"order_id"`
	Box     spatial.Box `json:"box"`
}

// Rejected is an item that could not be placed.
type Rejected struct {
	OrderID int    `json:"order_id"`
	Name    string `json:"name,omitempty"`
	Err     error  `json:"-"`
}

// Code returns the error code of the rejection.
func (r Rejected) Code() errors.Code { return errors.GetCode(r.Err) }

// String renders the rejection, e.g. "#3 crate: OVERLAP: ...".
func (r Rejected) String() string {
	label := fmt.Sprintf("#%d", r.OrderID)
	if r.Name != "" {
		label += " " + r.Name
	}
	return label + ": " + r.Err.Error()
}

// Report is the outcome of loading a task into a session.
type Report struct {
	Placed   []Placed   `json:"placed"`
	Rejected []Rejected `json:"rejected"`
}

// OK reports whether every item was placed.
func (r Report) OK() bool { return len(r.Rejected) == 0 }

// Err returns nil if every item was placed, otherwise an error summarizing
// the rejections.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, len(r.Rejected))
	for i, rej := range r.Rejected {
		lines[i] = rej.String()
	}
	return errors.New(errors.ErrCodeInvalidInput, "%d of %d item(s) rejected:\n%s",
		len(r.Rejected), len(r.Rejected)+len(r.Placed), strings.Join(lines, "\n"))
}

// Load places the task's items into sess in order_id order. Rejected items
// are recorded in the report and do not stop the load. The task's
// container is not applied; use NewSession for that.
func Load(t *Task, sess *session.Session) Report {
	rep := Report{Placed: []Placed{}, Rejected: []Rejected{}}
	for _, it := range Ordered(t.Items) {
		b, err := sess.TryPlace(it.Candidate())
		if err != nil {
			rep.Rejected = append(rep.Rejected, Rejected{OrderID: it.OrderID, Name: it.Name, Err: err})
			continue
		}
		rep.Placed = append(rep.Placed, Placed{OrderID: it.OrderID, Box: b})
	}
	return rep
}

// NewSession creates a session sized to the task's container and loads the
// task's items into it. opts.Container is overridden by the task. An
// invalid container is an error; rejected items are only reported.
func NewSession(t *Task, opts session.Options) (*session.Session, Report, error) {
	opts.Container = t.Container()
	if err := opts.Container.Validate(); err != nil {
		return nil, Report{}, err
	}
	sess, err := session.New(opts)
	if err != nil {
		return nil, Report{}, err
	}
	return sess, Load(t, sess), nil
}
