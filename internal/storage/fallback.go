package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
)

// Fallback tries each adapter in order. Saves go to the first adapter that
// accepts them; loads return the first adapter holding data.
type Fallback struct {
	adapters []Adapter
}

// NewFallback chains adapters; nil entries are ignored.
func NewFallback(adapters ...Adapter) *Fallback {
	f := &Fallback{}
	for _, a := range adapters {
		if a != nil {
			f.adapters = append(f.adapters, a)
		}
	}
	return f
}

func (f *Fallback) Save(ctx context.Context, data model.AppData) error {
	if len(f.adapters) == 0 {
		return ErrNoBackend
	}
	var errs []error
	for i, a := range f.adapters {
		err := a.Save(ctx, data)
		if err == nil {
			return nil
		}
		logger.Warn("Storage save failed, trying next backend", logger.F("backend", i), logger.Err(err))
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

func (f *Fallback) Load(ctx context.Context) (model.AppData, bool, error) {
	if len(f.adapters) == 0 {
		return model.AppData{}, false, ErrNoBackend
	}
	var errs []error
	for i, a := range f.adapters {
		data, found, err := a.Load(ctx)
		if err != nil {
			logger.Warn("Storage load failed, trying next backend", logger.F("backend", i), logger.Err(err))
			errs = append(errs, err)
			continue
		}
		if found {
			return data, true, nil
		}
	}
	if len(errs) == len(f.adapters) {
		return model.AppData{}, false, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
	}
	return model.AppData{}, false, nil
}
