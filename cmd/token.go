package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	internalApp "github.com/haierkeys/note-feed-service/internal/app"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/util"
)

type tokenFlags struct {
	config    string
	accountID int64
	expiry    string
}

// token 为指定账号签发查看者 Token，账号体系由上游服务负责
func init() {
	flags := new(tokenFlags)

	var tokenCommand = &cobra.Command{
		Use:   "token -a account_id [-c config_file] [-e expiry]",
		Short: "Issue a viewer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.accountID <= 0 {
				return fmt.Errorf("account id must be positive, got %d", flags.accountID)
			}
			cfg, _, err := internalApp.LoadConfig(flags.config)
			if err != nil {
				return err
			}

			expiry := cfg.GetTokenExpiry()
			if flags.expiry != "" {
				d, err := util.ParseDuration(flags.expiry)
				if err != nil {
					return err
				}
				expiry = d
			}

			tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
				SecretKey: cfg.Security.AuthTokenKey,
				Issuer:    util.AppName,
				Expiry:    expiry,
			})
			tok, err := tm.Generate(flags.accountID)
			if err != nil {
				return err
			}

			bootstrapLogger.Info("token issued",
				zap.Int64("accountId", flags.accountID),
				zap.Time("expiresAt", time.Now().Add(expiry)))
			fmt.Println(tok)
			return nil
		},
	}

	rootCmd.AddCommand(tokenCommand)
	fs := tokenCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "config/config.yaml", "config file")
	fs.Int64VarP(&flags.accountID, "account", "a", 0, "account id")
	fs.StringVarP(&flags.expiry, "expiry", "e", "", "token lifetime, e.g. 24h or 30d")
}
