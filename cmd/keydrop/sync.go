package main

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/keydropstore"
	"github.com/minsu-steven-kim/keydrop2/sync"
)

var ErrNoSyncServer = errors.New("no sync server configured, set sync.server_url in the config file")

type SyncOptions struct {
	*RootOptions

	status bool
}

var _ genericclioptions.CmdOptions = &SyncOptions{}

func NewSyncOptions(root *RootOptions) *SyncOptions {
	return &SyncOptions{RootOptions: root}
}

func (*SyncOptions) Complete() error { return nil }
func (*SyncOptions) Validate() error { return nil }

func (o *SyncOptions) Run(ctx context.Context, _ ...string) error {
	device, err := loadOrCreateDeviceState(ctx, o.store)
	if err != nil {
		return err
	}

	if o.status {
		o.printStatus(device)
		return nil
	}

	if o.config.Sync == nil || len(o.config.Sync.ServerURL) == 0 {
		return ErrNoSyncServer
	}

	if err := o.unlock(ctx); err != nil {
		return err
	}

	transport := sync.NewHTTPTransport(o.config.Sync.ServerURL, device.AccessToken)
	engine := sync.NewEngine(o.controller, transport, device.DeviceID, sync.WithCommandLog(o.store))

	if err := engine.Sync(ctx); err != nil {
		return err
	}

	if err := engine.PollCommands(ctx); err != nil {
		return err
	}

	device.LastSyncAt = time.Now().Unix()
	if err := o.store.SaveDeviceState(ctx, device); err != nil {
		return err
	}

	o.Infof("sync complete\n")

	return nil
}

// loadOrCreateDeviceState returns store's persisted device identity,
// minting and saving a fresh one on first use.
func loadOrCreateDeviceState(ctx context.Context, store *keydropstore.Store) (keydropstore.DeviceState, error) {
	d, err := store.LoadDeviceState(ctx)
	if err == nil {
		return d, nil
	}

	if !errors.Is(err, keydropstore.ErrNoDeviceState) {
		return keydropstore.DeviceState{}, err
	}

	d = keydropstore.DeviceState{DeviceID: uuid.NewString()}

	if err := store.SaveDeviceState(ctx, d); err != nil {
		return keydropstore.DeviceState{}, err
	}

	return d, nil
}

func (o *SyncOptions) printStatus(d keydropstore.DeviceState) {
	o.Printf("device: %s\n", d.DeviceID)

	if d.LastSyncAt == 0 {
		o.Printf("last synced: never\n")
		return
	}

	o.Printf("last synced: %s\n", humanize.Time(time.Unix(d.LastSyncAt, 0)))
}

// NewCmdSync creates the `sync` cobra command.
func NewCmdSync(root *RootOptions) *cobra.Command {
	o := NewSyncOptions(root)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the vault with the configured sync server",
		Long:  "Pull remote changes, merge conflicts field by field, and push local changes, then process any pending remote commands (lock or wipe).",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().BoolVar(&o.status, "status", false, "show this device's sync identity and last sync time without syncing")

	return cmd
}
