// Package workflow holds the status-gated transition tables and the pure guard
// predicates shared by the lifecycle, result and payment services.
package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

// Domain names a family of entities sharing one transition table.
type Domain string

const (
	DomainResult  Domain = "result"
	DomainPayment Domain = "payment"
)

// Result actions.
const (
	ResultActionApprove = "approve"
	ResultActionReject  = "reject"
	ResultActionRelease = "release"
)

// Payment actions.
const (
	PaymentActionGenerate = "GENERATE"
	PaymentActionApprove  = "APPROVE"
	PaymentActionPay      = "PAY"
)

// Rule maps one action to its single destination status. A rule with Create set
// has no source status; it describes inserting a new entity.
type Rule struct {
	Action string
	From   string
	To     string
	Create bool
}

// Sentinel causes carried by TransitionError.
var (
	ErrUnknownDomain    = errors.New("unknown workflow domain")
	ErrUnknownAction    = errors.New("unknown action")
	ErrInvalidSource    = errors.New("action not allowed from current status")
	ErrAlreadyInStatus  = errors.New("already in target status")
	ErrTerminalStatus   = errors.New("status is terminal")
	ErrCreateOnlyAction = errors.New("action only creates new records")
	ErrDuplicateRule    = errors.New("duplicate rule")
)

// TransitionError explains why NextStatus refused a transition.
type TransitionError struct {
	Domain  Domain
	Action  string
	Current string
	Cause   error
}

func (e *TransitionError) Error() string {
	switch {
	case errors.Is(e.Cause, ErrUnknownAction):
		return fmt.Sprintf("unknown %s action %q", e.Domain, e.Action)
	case errors.Is(e.Cause, ErrAlreadyInStatus):
		return fmt.Sprintf("%s is already %s", e.Domain, e.Current)
	case errors.Is(e.Cause, ErrTerminalStatus):
		return fmt.Sprintf("%s is %s and cannot be changed", e.Domain, e.Current)
	case errors.Is(e.Cause, ErrCreateOnlyAction):
		return fmt.Sprintf("%s action %s cannot be applied to an existing record", e.Domain, e.Action)
	default:
		return fmt.Sprintf("cannot %s %s from status %s", strings.ToLower(e.Action), e.Domain, e.Current)
	}
}

func (e *TransitionError) Unwrap() error { return e.Cause }

// Dispatcher resolves (domain, action, current status) to the destination status
// using registered tables.
type Dispatcher struct {
	mu     sync.RWMutex
	tables map[Domain]map[string]Rule
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{tables: make(map[Domain]map[string]Rule)}
}

// DefaultDispatcher returns a dispatcher with the result and payment tables registered.
func DefaultDispatcher() *Dispatcher {
	d := NewDispatcher()
	if err := d.Register(DomainResult, ResultRules()...); err != nil {
		panic(err)
	}
	if err := d.Register(DomainPayment, PaymentRules()...); err != nil {
		panic(err)
	}
	return d
}

// ResultRules is the result batch transition table.
func ResultRules() []Rule {
	return []Rule{
		{Action: ResultActionApprove, From: string(models.ResultStatusPending), To: string(models.ResultStatusApproved)},
		{Action: ResultActionReject, From: string(models.ResultStatusPending), To: string(models.ResultStatusRejected)},
		{Action: ResultActionRelease, From: string(models.ResultStatusApproved), To: string(models.ResultStatusReleased)},
	}
}

// PaymentRules is the lecturer payment transition table.
func PaymentRules() []Rule {
	return []Rule{
		{Action: PaymentActionGenerate, To: string(models.PaymentStatusPending), Create: true},
		{Action: PaymentActionApprove, From: string(models.PaymentStatusPending), To: string(models.PaymentStatusApproved)},
		{Action: PaymentActionPay, From: string(models.PaymentStatusApproved), To: string(models.PaymentStatusPaid)},
	}
}

// Register adds a domain table. Registering the same action twice for a domain fails.
func (d *Dispatcher) Register(domain Domain, rules ...Rule) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	table := make(map[string]Rule, len(d.tables[domain])+len(rules))
	for key, rule := range d.tables[domain] {
		table[key] = rule
	}
	for _, rule := range rules {
		key := actionKey(rule.Action)
		if key == "" {
			return fmt.Errorf("register %s: empty action", domain)
		}
		if _, exists := table[key]; exists {
			return fmt.Errorf("register %s action %s: %w", domain, rule.Action, ErrDuplicateRule)
		}
		table[key] = rule
	}
	d.tables[domain] = table
	return nil
}

// Rule returns the registered rule for action.
func (d *Dispatcher) Rule(domain Domain, action string) (Rule, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rule, ok := d.tables[domain][actionKey(action)]
	return rule, ok
}

// Actions lists the canonical action names registered for domain.
func (d *Dispatcher) Actions(domain Domain) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	actions := make([]string, 0, len(d.tables[domain]))
	for _, rule := range d.tables[domain] {
		actions = append(actions, rule.Action)
	}
	sort.Strings(actions)
	return actions
}

// NextStatus returns the single allowed destination for action from current.
// Pass an empty current status for create actions.
func (d *Dispatcher) NextStatus(domain Domain, action, current string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	table, ok := d.tables[domain]
	if !ok {
		return "", &TransitionError{Domain: domain, Action: action, Current: current, Cause: ErrUnknownDomain}
	}
	rule, ok := table[actionKey(action)]
	if !ok {
		return "", &TransitionError{Domain: domain, Action: action, Current: current, Cause: ErrUnknownAction}
	}
	if rule.Create {
		if current != "" {
			return "", &TransitionError{Domain: domain, Action: rule.Action, Current: current, Cause: ErrCreateOnlyAction}
		}
		return rule.To, nil
	}
	if current == rule.From {
		return rule.To, nil
	}
	if current == rule.To {
		return "", &TransitionError{Domain: domain, Action: rule.Action, Current: current, Cause: ErrAlreadyInStatus}
	}
	if d.isTerminal(table, current) {
		return "", &TransitionError{Domain: domain, Action: rule.Action, Current: current, Cause: ErrTerminalStatus}
	}
	return "", &TransitionError{Domain: domain, Action: rule.Action, Current: current, Cause: ErrInvalidSource}
}

// IsTerminal reports whether no registered action leaves status.
func (d *Dispatcher) IsTerminal(domain Domain, status string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	table, ok := d.tables[domain]
	if !ok {
		return false
	}
	return d.isTerminal(table, status)
}

func (d *Dispatcher) isTerminal(table map[string]Rule, status string) bool {
	reachable := false
	for _, rule := range table {
		if !rule.Create && rule.From == status {
			return false
		}
		if rule.To == status {
			reachable = true
		}
	}
	return reachable
}

func actionKey(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
