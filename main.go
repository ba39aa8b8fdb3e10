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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ewoutp/npm-illuminator/pkg/environment"
	"github.com/ewoutp/npm-illuminator/pkg/logging"
	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/server"
	"github.com/ewoutp/npm-illuminator/pkg/service"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

const (
	projectName   = "NPM illuminator"
	bridgeAuto    = "auto"
	logQueueLines = 256
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

var (
	cmdMain = &cobra.Command{
		Use:   "npm-illuminator",
		Short: "Camera synchronized LED illuminator",
		Run:   cmdRunRun,
	}
	cmdRun = &cobra.Command{
		Use:   "run",
		Short: "Run the illuminator",
		Run:   cmdRunRun,
	}
	cmdCheck = &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print it",
		Run:   cmdCheckRun,
	}
	cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s build %s\n", projectName, projectVersion, projectBuild)
		},
	}

	mainOptions struct {
		logging logging.Config
		bridge  string
		server  server.Config
		// Run the simulator without front panel
		headless bool
		config   configOptions
	}
)

// configOptions holds the flags that select and override the device configuration.
type configOptions struct {
	profile        string
	configPath     string
	i2cBus         string
	minFPS         int
	maxFPS         int
	deadTime       int
	cameraPolarity string
	startSemantics string
	modes          []string
}

func init() {
	f := cmdMain.PersistentFlags()
	f.StringVarP(&mainOptions.logging.Level, "level", "l", "info", "Set log level")
	f.StringVar(&mainOptions.logging.Format, "log-format", logging.FormatAuto, "Log format (auto|console|json)")
	addConfigFlags(f, &mainOptions.config)

	for _, c := range []*cobra.Command{cmdMain, cmdRun} {
		f := c.Flags()
		f.StringVarP(&mainOptions.bridge, "bridge", "b", bridgeAuto, "Type of bridge to use (auto|rpi|sim)")
		f.BoolVar(&mainOptions.headless, "headless", false, "Run the simulator without front panel")
		f.StringVar(&mainOptions.server.Host, "host", "0.0.0.0", "Host address the diagnostics HTTP server will listen on")
		f.IntVar(&mainOptions.server.HTTPPort, "http-port", 0, "Port the diagnostics HTTP server will listen on (0 disables it)")
	}
	cmdMain.AddCommand(cmdRun, cmdCheck, cmdVersion)
}

func addConfigFlags(f *pflag.FlagSet, o *configOptions) {
	f.StringVarP(&o.profile, "profile", "p", model.ProfileNPMDriver2, "Device profile ("+strings.Join(model.ProfileNames(), "|")+")")
	f.StringVarP(&o.configPath, "config", "c", "", "Path of a TOML configuration file applied on top of the profile")
	f.StringVar(&o.i2cBus, "i2c-bus", "", "Path of the I2C bus device")
	f.IntVar(&o.minFPS, "min-fps", 0, "Lowest frame rate")
	f.IntVar(&o.maxFPS, "max-fps", 0, "Highest frame rate")
	f.IntVar(&o.deadTime, "dead-time", 0, "Dead time before every trigger pulse, in time units")
	f.StringVar(&o.cameraPolarity, "camera-polarity", "", "Polarity of the camera trigger (active-low|active-high)")
	f.StringVar(&o.startSemantics, "start-semantics", "", "Start control semantics (level|edge)")
	f.StringSliceVar(&o.modes, "modes", nil, "Modes cycled by the mode button (constant,alternate-all,alternate-pair,round-robin)")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		Exitf("%s\n", err)
	}
}

// resolveConfig builds the device configuration from the selected profile,
// the configuration file and the flags that were set explicitly.
func resolveConfig(f *pflag.FlagSet, o configOptions) (model.Config, error) {
	cfg, err := model.Profile(o.profile)
	if err != nil {
		return model.Config{}, maskAny(err)
	}
	if o.configPath != "" {
		if cfg, err = model.Load(o.configPath, cfg); err != nil {
			return model.Config{}, maskAny(err)
		}
	}
	if f.Changed("i2c-bus") {
		cfg.I2CBus = o.i2cBus
	}
	if f.Changed("min-fps") {
		cfg.Timing.MinFPS = o.minFPS
	}
	if f.Changed("max-fps") {
		cfg.Timing.MaxFPS = o.maxFPS
	}
	if f.Changed("dead-time") {
		cfg.Timing.DeadTime = o.deadTime
	}
	if f.Changed("camera-polarity") {
		cfg.Camera.Polarity = model.Polarity(o.cameraPolarity)
	}
	if f.Changed("start-semantics") {
		cfg.Buttons.StartAs = model.StartSemantics(o.startSemantics)
	}
	if f.Changed("modes") {
		modes := make([]model.Mode, 0, len(o.modes))
		for _, name := range o.modes {
			m, err := model.ParseMode(name)
			if err != nil {
				return model.Config{}, maskAny(err)
			}
			modes = append(modes, m)
		}
		cfg.Modes.Active = modes
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func cmdCheckRun(cmd *cobra.Command, args []string) {
	cfg, err := resolveConfig(cmd.Flags(), mainOptions.config)
	if err != nil {
		Exitf("%s\n", err)
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	encoded, err := cfg.Encode()
	if err != nil {
		Exitf("Failed to encode configuration: %s\n", err)
	}
	os.Stdout.Write(encoded)
}

func cmdRunRun(cmd *cobra.Command, args []string) {
	// Errors are printed after the log output is restored to stderr.
	if err := runIlluminator(cmd.Flags()); err != nil {
		Exitf("%s\n", err)
	}
}

// runIlluminator runs the illuminator until a signal is received.
func runIlluminator(flags *pflag.FlagSet) error {
	// Resolve the log format before the output is wrapped
	logCfg := mainOptions.logging
	if logCfg.Format == "" || logCfg.Format == logging.FormatAuto {
		logCfg.Format = logging.FormatJSON
		if logging.IsTerminal(os.Stderr) {
			logCfg.Format = logging.FormatConsole
		}
	}
	logOutput := logging.NewMultiWriter(os.Stderr)
	logger, err := logging.New(logCfg, logOutput)
	if err != nil {
		return maskAny(err)
	}

	cfg, err := resolveConfig(flags, mainOptions.config)
	if err != nil {
		return maskAny(err)
	}

	bridgeType := mainOptions.bridge
	if bridgeType == bridgeAuto {
		bridgeType = environment.AutoDetectBridgeType(logger)
	}
	var br bridge.API
	var logLines <-chan string
	switch bridgeType {
	case environment.BridgeRaspberryPi:
		br, err = bridge.NewRaspberryPiBridge(cfg.I2CBus)
		if err != nil {
			return errors.Wrap(err, "failed to initialize Raspberry Pi bridge")
		}
	case environment.BridgeSimulator:
		br = bridge.NewVirtualBridge()
		if !mainOptions.headless {
			// The front panel owns the terminal, show logs inside it.
			queue := logging.NewQueueWriter(logQueueLines)
			restore := logOutput.Replace(queue)
			defer restore()
			logLines = queue.Lines()
		}
	default:
		return errors.Errorf("unknown bridge type '%s' (%s)", bridgeType,
			strings.Join([]string{bridgeAuto, environment.BridgeRaspberryPi, environment.BridgeSimulator}, "|"))
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		Illuminator:    cfg,
		Headless:       mainOptions.headless,
	}, service.Dependencies{
		Logger:   logger,
		Bridge:   br,
		LogLines: logLines,
	})
	if err != nil {
		br.Close()
		return errors.Wrap(err, "failed to initialize service")
	}
	var httpServer *server.Server
	if mainOptions.server.HTTPPort > 0 {
		if httpServer, err = server.New(mainOptions.server, logger); err != nil {
			br.Close()
			return errors.Wrap(err, "failed to initialize server")
		}
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	logger.Info().
		Str("version", projectVersion).
		Str("build", projectBuild).
		Str("bridge", bridgeType).
		Str("profile", mainOptions.config.profile).
		Strs("modes", lo.Map(cfg.Modes.Active, func(m model.Mode, _ int) string { return m.String() })).
		Msgf("Starting %s", projectName)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	if httpServer != nil {
		g.Go(func() error { return httpServer.Run(ctx) })
	}
	notifySystemd(logger, daemon.SdNotifyReady)
	err = g.Wait()
	notifySystemd(logger, daemon.SdNotifyStopping)
	if err != nil {
		return errors.Wrap(err, "service run failed")
	}
	return nil
}

// notifySystemd reports the given state when running as a systemd
// notify service.
func notifySystemd(log zerolog.Logger, state string) {
	if sent, err := daemon.SdNotify(false, state); err != nil {
		log.Debug().Err(err).Str("state", state).Msg("Failed to notify systemd")
	} else if sent {
		log.Debug().Str("state", state).Msg("Notified systemd")
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
