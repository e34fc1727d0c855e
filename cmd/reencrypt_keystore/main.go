// Re-encrypts a v3 keystore file under a new password.
// The key material is unchanged; a fresh salt and IV are drawn.
// Usage: go run ./cmd/reencrypt_keystore --in old.json --out new.json
package main

import (
	"fmt"
	"os"

	"github.com/AlexZinkM/ether-keystore/internal/config"
	"github.com/AlexZinkM/ether-keystore/internal/crypto"

	"github.com/urfave/cli/v2"
)

var (
	inFlag = &cli.StringFlag{
		Name:     "in",
		Usage:    "path to the keystore file to read",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "path to write the re-encrypted keystore to",
		Required: true,
	}
	lightFlag = &cli.BoolFlag{
		Name:  "light",
		Usage: "use light scrypt parameters (tests and low-memory devices only)",
	}
)

func main() {
	app := &cli.App{
		Name:   "reencrypt_keystore",
		Usage:  "re-encrypt a v3 keystore file under a new password",
		Flags:  []cli.Flag{inFlag, outFlag, lightFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	data, err := os.ReadFile(c.String(inFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to read keystore: %w", err)
	}
	blob, err := crypto.Parse(data)
	if err != nil {
		return err
	}

	oldPassword, err := config.ReadPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)
	newPassword, err := config.ReadPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)
	if len(newPassword) == 0 {
		return fmt.Errorf("new password cannot be empty")
	}

	params := crypto.StandardParams
	if c.Bool(lightFlag.Name) {
		params = crypto.LightParams
	}
	out, err := crypto.NewCodec(params).Reencrypt(blob, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("failed to re-encrypt keystore: %w", err)
	}
	encoded, err := out.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String(outFlag.Name), encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}

	fmt.Fprintf(os.Stderr, "re-encrypted %s\n", out.Account().Address.Hex())
	return nil
}
