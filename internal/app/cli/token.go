package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	jwtmw "stock_fetcher/internal/platform/jwt"
)

// newTokenCommand はAPIクライアント用のJWTを発行するサブコマンドです。
func newTokenCommand(secret func() string, stdout, stderr io.Writer) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <client>",
		Short: "Mint a bearer token for the HTTP API, signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := jwtmw.NewGenerator(secret(), ttl).GenerateToken(args[0])
			if err != nil {
				return report(stderr, err.Error())
			}
			_, err = fmt.Fprintln(stdout, tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", jwtmw.DefaultExpiration, "token lifetime")
	return cmd
}
