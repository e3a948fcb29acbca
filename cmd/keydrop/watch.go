package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/keydropstore"
	"github.com/minsu-steven-kim/keydrop2/scheduler"
	"github.com/minsu-steven-kim/keydrop2/sync"
)

// WatchOptions runs the foreground daemon mode: auto-lock, sync, and
// remote command polling on their own cadences until interrupted.
// Every other subcommand is a one-shot process; this is the only one
// meant to keep running.
type WatchOptions struct {
	*RootOptions

	device keydropstore.DeviceState
}

var _ genericclioptions.CmdOptions = &WatchOptions{}

func NewWatchOptions(root *RootOptions) *WatchOptions {
	return &WatchOptions{RootOptions: root}
}

func (*WatchOptions) Complete() error { return nil }
func (*WatchOptions) Validate() error { return nil }

func (o *WatchOptions) Run(ctx context.Context, _ ...string) error {
	device, err := loadOrCreateDeviceState(ctx, o.store)
	if err != nil {
		return err
	}

	o.device = device

	if err := o.unlock(ctx); err != nil {
		return err
	}

	var (
		syncFn, commandFn func(context.Context) error
		schedOpts         []scheduler.Opt
	)

	if o.config.Sync != nil && len(o.config.Sync.ServerURL) > 0 {
		transport := sync.NewHTTPTransport(o.config.Sync.ServerURL, device.AccessToken)
		engine := sync.NewEngine(o.controller, transport, device.DeviceID, sync.WithCommandLog(o.store))

		syncFn = func(ctx context.Context) error {
			if err := engine.Sync(ctx); err != nil {
				return err
			}

			return o.recordSync(ctx)
		}
		commandFn = engine.PollCommands

		if interval, err := o.config.pollInterval(); err != nil {
			return err
		} else if interval > 0 {
			schedOpts = append(schedOpts, scheduler.WithSyncInterval(interval), scheduler.WithCommandInterval(interval))
		}
	} else {
		o.Infof("no sync server configured, running auto-lock only\n")
	}

	sched := scheduler.New(o.controller.AutoLockProbe, syncFn, commandFn, schedOpts...)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	o.Infof("watching (auto-lock every %s); press ctrl-c to stop\n", scheduler.DefaultAutoLockInterval)

	sched.Start(runCtx)
	<-runCtx.Done()
	sched.Stop()

	o.Infof("stopped\n")

	return nil
}

func (o *WatchOptions) recordSync(ctx context.Context) error {
	o.device.LastSyncAt = time.Now().Unix()
	return o.store.SaveDeviceState(ctx, o.device)
}

// NewCmdWatch creates the `watch` cobra command.
func NewCmdWatch(root *RootOptions) *cobra.Command {
	o := NewWatchOptions(root)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run auto-lock, sync, and remote command polling in the foreground until interrupted",
		Long:  "Stay unlocked and run the auto-lock probe, sync poll, and remote command poll on their own cadences, for as long as this process keeps running.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	return cmd
}
