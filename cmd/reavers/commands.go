package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reavers-game/go-reavers/env"
	"github.com/reavers-game/go-reavers/server"
	"github.com/reavers-game/go-reavers/service/assets"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/validate"
)

type actionFlags struct {
	assetType string
	ids       []string
	minted    bool
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reavers",
		Short:         "Drive asset lifecycle actions against the Reavers worker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		actionCmd("freeze", "Move wallet assets into game custody", persist.ActionFreeze, persist.LocationInWallet),
		actionCmd("thaw", "Release in-game assets back to the wallet", persist.ActionThaw, persist.LocationInGame),
		actionCmd("withdraw", "Mint off-chain assets and withdraw them to the wallet", persist.ActionMintAndWithdraw, persist.LocationInGame),
		levelUpCmd(),
		listenCmd(),
	)

	return root
}

func actionCmd(name, short string, action persist.ActionType, location persist.Location) *cobra.Command {
	flags := actionFlags{}

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd.Context(), action, location, flags)
		},
	}

	cmd.Flags().StringVar(&flags.assetType, "type", "", "asset type (CAPTAIN, SHIP, ITEM, CREW, GENESIS_SHIP)")
	cmd.Flags().StringSliceVar(&flags.ids, "ids", nil, "asset ids (mint addresses, or uids for withdraw)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("ids")

	return cmd
}

func runAction(ctx context.Context, action persist.ActionType, location persist.Location, flags actionFlags) error {
	c := server.ClientInit(ctx)
	if c.Wallet == nil {
		return persist.ErrNoWallet{}
	}

	assetType := persist.AssetType(flags.assetType)
	if !assetType.IsValid() {
		return fmt.Errorf("invalid asset type: %s", flags.assetType)
	}
	if len(flags.ids) > persist.MaxAssetCap {
		return fmt.Errorf("at most %d assets per action", persist.MaxAssetCap)
	}

	minted := !action.UsesUids()
	mintStatus := persist.MintStatusMinted
	if !minted {
		mintStatus = persist.MintStatusNotMinted
	}

	catalog := make([]persist.Asset, len(flags.ids))
	for i, id := range flags.ids {
		catalog[i] = persist.Asset{
			ID:       persist.AssetID(id),
			Type:     assetType,
			Location: location,
			Minted:   minted,
		}
	}

	sel := assets.NewSelection(catalog)
	sel.SelectAll()

	// Start the notification stream so the job can resolve
	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	go func() {
		source := notifications.NewWebsocketSource(env.GetString("NOTIFICATIONS_WS_URL"), env.GetString("AUTH_TOKEN"))
		if err := c.Notifs.Run(streamCtx, source); err != nil && streamCtx.Err() == nil {
			logger.For(streamCtx).WithError(err).Error("notification stream stopped")
		}
	}()

	result, err := c.API.Asset.HandleAssets(ctx, action, sel, validate.SelectionQuery{
		AssetType:            assetType,
		Location:             location,
		MintStatus:           mintStatus,
		SkipSliderValueCheck: true,
	})
	if err != nil {
		return err
	}

	logger.For(ctx).Infof("job %s finished: %s", result.JobID, result.State)
	for i, sig := range result.Signatures {
		logger.For(ctx).Infof("  tx %d signature %s", i, sig)
	}
	return nil
}

func levelUpCmd() *cobra.Command {
	var (
		entityType string
		uid        string
		fromLevel  int
		count      int
	)

	cmd := &cobra.Command{
		Use:   "level-up",
		Short: "Level up a single entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := server.ClientInit(ctx)

			streamCtx, stopStream := context.WithCancel(ctx)
			defer stopStream()
			go func() {
				source := notifications.NewWebsocketSource(env.GetString("NOTIFICATIONS_WS_URL"), env.GetString("AUTH_TOKEN"))
				if err := c.Notifs.Run(streamCtx, source); err != nil && streamCtx.Err() == nil {
					logger.For(streamCtx).WithError(err).Error("notification stream stopped")
				}
			}()

			result, err := c.API.Level.LevelUp(ctx, persist.AssetType(entityType), uid, fromLevel, count)
			if err != nil {
				return err
			}

			logger.For(ctx).Infof("job %s finished: %s (cost %d gold, %s)", result.JobID, result.State, result.Cost.Gold, result.Cost.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityType, "type", "", "entity type (CAPTAIN, SHIP, CREW, ITEM)")
	cmd.Flags().StringVar(&uid, "uid", "", "entity uid")
	cmd.Flags().IntVar(&fromLevel, "from-level", 1, "current level of the entity")
	cmd.Flags().IntVar(&count, "count", 1, "number of levels to gain")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("uid")

	return cmd
}

// listenCmd runs a webhook receiver that feeds pushed notification batches
// into the dispatcher, for setups where the worker calls back over HTTP
// instead of a socket.
func listenCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive worker notifications over HTTP and log them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := server.ClientInit(ctx)

			if env.GetString("ENV") == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			router := gin.Default()
			notifications.HandlersInit(router, c.Notifs)

			ch, unsubscribe := c.Notifs.Subscribe()
			defer unsubscribe()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.For(ctx).Infof("listening on %s", addr)
				return http.ListenAndServe(addr, router)
			})
			eg.Go(func() error {
				for {
					select {
					case event := <-ch:
						logger.For(ctx).Infof("notification %s for job %s", event.Type, event.Data.ID)
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			})
			return eg.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":4000", "listen address")

	return cmd
}
