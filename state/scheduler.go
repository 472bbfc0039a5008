package state

import (
	"fmt"
	"time"
)

// Sleep waits for delay, returning false if the router is stopped first.
func (e *Env) Sleep(delay time.Duration) bool {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-e.Context.Done():
		return false
	}
}

func (s *State) runTask(fun func(*State) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			s.Log.Error("task failed", "error", err)
			s.Cancel(err)
		}
	}()
	return fun(s)
}

// Go runs fun on its own goroutine. A returned error stops the router.
func (s *State) Go(fun func(*State) error) {
	s.tasks.Go(func() error {
		return s.runTask(fun)
	})
}

// RepeatTask runs fun immediately and then once every delay until the router stops.
func (s *State) RepeatTask(fun func(*State) error, delay time.Duration) {
	s.tasks.Go(func() error {
		for s.Context.Err() == nil {
			if err := s.runTask(fun); err != nil {
				return err
			}
			if !s.Sleep(delay) {
				break
			}
		}
		return nil
	})
}

// ScheduleRepeatTask waits delay before each run of fun.
func (s *State) ScheduleRepeatTask(fun func(*State) error, delay time.Duration) {
	s.tasks.Go(func() error {
		for s.Sleep(delay) {
			if err := s.runTask(fun); err != nil {
				return err
			}
		}
		return nil
	})
}

// Wait blocks until every task has returned.
func (s *State) Wait() error {
	return s.tasks.Wait()
}
