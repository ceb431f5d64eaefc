// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package services

import (
	"context"
	"fmt"
)

// Scheduler is a component with a non-blocking Start and a blocking Stop.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService supervises a Scheduler.
type SchedulerService struct {
	scheduler Scheduler
	name      string
}

// NewSchedulerService wraps scheduler under name.
func NewSchedulerService(name string, scheduler Scheduler) *SchedulerService {
	return &SchedulerService{scheduler: scheduler, name: name}
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

func (s *SchedulerService) String() string {
	return s.name
}

// Notifier is a worker pool started once and drained on Close.
type Notifier interface {
	Start(ctx context.Context)
	Close() error
}

// NotifierService supervises the notification dispatcher. Close is final,
// so the service is meant to be stopped only at shutdown.
type NotifierService struct {
	notifier Notifier
}

// NewNotifierService wraps notifier.
func NewNotifierService(notifier Notifier) *NotifierService {
	return &NotifierService{notifier: notifier}
}

// Serve implements suture.Service. The workers run on a context that
// outlives ctx so queued notices drain during Close.
func (s *NotifierService) Serve(ctx context.Context) error {
	s.notifier.Start(context.WithoutCancel(ctx))

	<-ctx.Done()

	if err := s.notifier.Close(); err != nil {
		return fmt.Errorf("notifier close failed: %w", err)
	}
	return ctx.Err()
}

func (s *NotifierService) String() string {
	return "match-notifier"
}

// Runner blocks in Run until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// EventBusService supervises the event router.
type EventBusService struct {
	runner Runner
}

// NewEventBusService wraps runner.
func NewEventBusService(runner Runner) *EventBusService {
	return &EventBusService{runner: runner}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	if err := s.runner.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("event bus failed: %w", err)
	}
	return ctx.Err()
}

func (s *EventBusService) String() string {
	return "event-bus"
}
