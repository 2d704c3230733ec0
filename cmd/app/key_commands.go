package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenvault/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Generate a new token encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI used to wrap the key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Re-encrypt stored tokens from the configured key to a new key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "new-key",
					Required: true,
					Usage:    "New key as base64 (KMS-wrapped when --new-kms-key-uri is set)",
				},
				&cli.StringFlag{
					Name:  "new-kms-key-uri",
					Value: "",
					Usage: "KMS key URI that wraps the new key",
				},
				dryRunFlag("Decrypt and re-encrypt without writing anything"),
				batchSizeFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				encryptionUseCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				oldCodec, err := container.TokenCodec(ctx)
				if err != nil {
					return err
				}

				newCodec, err := container.TokenCodecForKey(ctx, cmd.String("new-key"), cmd.String("new-kms-key-uri"))
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					encryptionUseCase,
					oldCodec,
					newCodec,
					container.Logger(),
					commands.DefaultIO().Writer,
					batchSize(cmd, container),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "encrypt-tokens",
			Usage: "Encrypt plaintext tokens stored before encryption was enabled",
			Flags: []cli.Flag{
				dryRunFlag("Count the values that would be encrypted without writing anything"),
				batchSizeFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				encryptionUseCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				codec, err := container.TokenCodec(ctx)
				if err != nil {
					return err
				}

				return commands.RunEncryptTokens(
					ctx,
					encryptionUseCase,
					codec,
					container.Logger(),
					commands.DefaultIO().Writer,
					batchSize(cmd, container),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
