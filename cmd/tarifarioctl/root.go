package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/application/auth"
	"github.com/jhoicas/tarifarios-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tarifarios-api/pkg/config"
	"github.com/jhoicas/tarifarios-api/pkg/jwt"
)

// issuerFactory construye el emisor que usa el comando token. La función devuelta
// libera la conexión abierta para emitirlo.
type issuerFactory func(ctx context.Context, cfg *config.Config) (*auth.CredentialIssuer, func(), error)

// postgresIssuer emisor sobre la base configurada, sin limitador de intentos.
func postgresIssuer(ctx context.Context, cfg *config.Config) (*auth.CredentialIssuer, func(), error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	users := postgres.NewUserRepository(pool)
	gate := access.NewGate(users, postgres.NewAccessRepository(pool))
	uc, err := auth.NewCredentialIssuer(users, gate, nil, auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return uc, pool.Close, nil
}

func newRootCmd(cfg *config.Config, newIssuer issuerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "tarifarioctl",
		Short:         "Operación de tarifarios-api: passwords y tokens de sesión",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("secret", "", "secreto JWT (por defecto JWT_SECRET)")

	root.AddCommand(
		newHashPasswordCmd(),
		newTokenCmd(cfg, newIssuer),
		newWhoamiCmd(cfg),
	)
	return root
}

func secretFrom(cmd *cobra.Command, cfg *config.Config) (string, error) {
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = cfg.JWT.Secret
	}
	if secret == "" {
		return "", jwt.ErrMissingSecret
	}
	return secret, nil
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Imprime el hash bcrypt de un password (para sembrar usuarios.password_hash)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func newTokenCmd(cfg *config.Config, newIssuer issuerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "token <id_usuario>",
		Short: "Emite un token de sesión con el rol, permisos y tarifarios actuales del usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("id_usuario inválido: %q", args[0])
			}
			secret, err := secretFrom(cmd, cfg)
			if err != nil {
				return err
			}
			local := *cfg
			local.JWT.Secret = secret

			uc, closeFn, err := newIssuer(cmd.Context(), &local)
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := uc.IssueToken(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

type whoamiOutput struct {
	UserID      int64     `json:"id_usuario"`
	Role        string    `json:"rol"`
	Permissions []string  `json:"permisos"`
	Tarifarios  []int64   `json:"tarifarios"`
	Issuer      string    `json:"iss"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami <token>",
		Short: "Valida un token y muestra sus claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := secretFrom(cmd, cfg)
			if err != nil {
				return err
			}
			claims, err := jwt.Parse(secret, args[0])
			if err != nil {
				return err
			}
			out := whoamiOutput{
				UserID:      claims.UserID,
				Role:        claims.Role,
				Permissions: claims.Permissions,
				Tarifarios:  claims.Tarifarios,
				Issuer:      claims.Issuer,
			}
			if claims.ExpiresAt != nil {
				out.ExpiresAt = claims.ExpiresAt.Time
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
