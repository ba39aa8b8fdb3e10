// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ewoutp/npm-illuminator/pkg/controller"
	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/sequencer"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
	"github.com/ewoutp/npm-illuminator/pkg/service/devices"
	"github.com/ewoutp/npm-illuminator/pkg/simulator"
)

var (
	maskAny = errors.WithStack
)

// Service runs the illuminator.
type Service interface {
	// Run the illuminator until the given context is cancelled.
	Run(ctx context.Context) error
}

// Config of the service.
type Config struct {
	ProgramVersion string
	// Illuminator is the validated device configuration.
	Illuminator model.Config
	// If set, the simulator runs without front panel and the start
	// switch is turned on at startup.
	Headless bool
}

// Dependencies of the service.
type Dependencies struct {
	Logger zerolog.Logger
	// Bridge to the hardware. A *bridge.VirtualBridge selects the simulator.
	Bridge bridge.API
	// LogLines is optional and shown in the simulator front panel.
	LogLines <-chan string
	// Clock is optional and defaults to the monotonic clock.
	Clock sequencer.Clock
}

type service struct {
	Config
	Dependencies

	devices    *devices.Service
	hardware   *simulator.Hardware
	controller *controller.Controller
	startedAt  time.Time
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	if deps.Bridge == nil {
		return nil, maskAny(errors.New("bridge is required"))
	}
	cfg := conf.Illuminator
	if deps.Clock == nil {
		clock, err := sequencer.NewMonotonicClock(cfg.Timing.SpinThreshold.D())
		if err != nil {
			return nil, errors.Wrap(err, "failed to create monotonic clock")
		}
		deps.Clock = clock
	}

	vb, isVirtual := deps.Bridge.(*bridge.VirtualBridge)
	devService, err := devices.NewService(deps.Logger, cfg, deps.Bridge, !isVirtual)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create devices")
	}
	s := &service{
		Config:       conf,
		Dependencies: deps,
		devices:      devService,
	}

	ctrlDeps := controller.Dependencies{
		Log:     deps.Logger.With().Str("component", "controller").Logger(),
		Output:  devService.Outputs,
		Buttons: devService.Buttons,
		Clock:   deps.Clock,
	}
	if isVirtual {
		s.hardware = simulator.NewHardware(cfg, vb)
		ctrlDeps.Sampler = s.hardware
		ctrlDeps.Display = s.hardware
	} else {
		ctrlDeps.Sampler = devService.Sampler
		// Keep optional devices nil rather than typed nil interfaces.
		if devService.Display != nil {
			ctrlDeps.Display = devService.Display
		}
		if devService.Digipot != nil {
			ctrlDeps.Proportional = devService.Digipot
		}
	}
	s.controller, err = controller.New(cfg, ctrlDeps)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create controller")
	}
	return s, nil
}

// Run configures the devices and runs the control loop (and the simulator
// front panel) until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	s.startedAt = time.Now()
	defer func() {
		if err := s.Bridge.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close bridge")
		}
	}()
	for _, w := range s.Illuminator.Warnings() {
		log.Warn().Msg(w)
	}

	// Configure devices
	log.Debug().Msg("configure devices")
	if err := s.devices.Configure(ctx); err != nil {
		return errors.Wrap(err, "not all devices are configured")
	}
	defer func() {
		log.Debug().Msg("closing devices")
		if err := s.devices.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to close all devices")
		}
	}()
	serviceUp.Set(1)
	defer serviceUp.Set(0)

	g, lctx := errgroup.WithContext(ctx)
	lctx, cancel := context.WithCancel(lctx)
	defer cancel()
	g.Go(func() error {
		log.Debug().Msg("run control loop")
		defer cancel()
		if err := s.controller.Run(lctx); err != nil {
			log.Error().Err(err).Msg("Control loop failed")
			return errors.Wrap(err, "control loop failed")
		}
		return nil
	})
	if hw := s.hardware; hw != nil {
		defer hw.Close()
		if s.Headless {
			log.Info().Msg("Running simulator without front panel")
			hw.SetStart(true)
		} else {
			g.Go(func() error {
				// Quitting the panel ends the service.
				defer cancel()
				return simulator.NewPanel(hw, s.LogLines).Run(lctx)
			})
		}
	}
	err := g.Wait()

	st := s.controller.State()
	log.Info().
		Str("cycles", humanize.Comma(int64(st.Cycles))).
		Str("uptime", humanize.RelTime(s.startedAt, time.Now(), "", "")).
		Msg("Illuminator stopped")
	if err != nil {
		return maskAny(err)
	}
	return nil
}
