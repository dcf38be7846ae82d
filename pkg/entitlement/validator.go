package entitlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidGrant indicates a grant failed field validation before persistence.
var ErrInvalidGrant = errors.New("invalid grant")

const DefaultValidatorWorkers = 4

// Validator runs grant field validation on a fixed pool of workers, keeping
// the CPU-bound checks off the goroutines that drive store I/O.
type Validator struct {
	tasks     chan validationTask
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type validationTask struct {
	grant  Grant
	result chan error
}

// NewValidator creates a validator backed by the given number of workers.
func NewValidator(workers int) *Validator {
	if workers <= 0 {
		workers = DefaultValidatorWorkers
	}
	v := &Validator{
		tasks: make(chan validationTask),
	}
	v.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go v.worker()
	}
	return v
}

func (v *Validator) worker() {
	defer v.wg.Done()
	for task := range v.tasks {
		task.result <- checkGrant(task.grant)
	}
}

// Validate submits a grant to the pool and waits for the verdict. It returns
// early when the context is canceled.
func (v *Validator) Validate(ctx context.Context, grant Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result := make(chan error, 1)
	select {
	case v.tasks <- validationTask{grant: grant, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers. Validate must not be called after Close.
func (v *Validator) Close() {
	v.closeOnce.Do(func() {
		close(v.tasks)
	})
	v.wg.Wait()
}

func checkGrant(grant Grant) error {
	if grant.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidGrant, grant.UserID)
	}
	if grant.CatalogID <= 0 {
		return fmt.Errorf("%w: catalog id must be positive, got %d", ErrInvalidGrant, grant.CatalogID)
	}
	if strings.TrimSpace(grant.CatalogName) == "" {
		return fmt.Errorf("%w: catalog name snapshot is blank", ErrInvalidGrant)
	}
	if grant.CreatedAt.IsZero() || grant.AccessedAt.IsZero() {
		return fmt.Errorf("%w: timestamps not set", ErrInvalidGrant)
	}
	return nil
}
