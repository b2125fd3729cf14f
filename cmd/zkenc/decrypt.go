package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt [circuit.r1cs]",
	Short: "decrypts a blob with a witness satisfying the circuit",
	Args:  cobra.ExactArgs(1),
	Run:   cmdDecrypt,
}

var (
	fWtnsPath   string
	fBlobPath   string
	fDecryptOut string
)

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVar(&fWtnsPath, "wtns", "", "witness file produced by the circuit's witness generator")
	decryptCmd.Flags().StringVar(&fBlobPath, "blob", "", "combined ciphertext to open")
	decryptCmd.Flags().StringVar(&fDecryptOut, "out", "", "output path for the plaintext -- default is stdout")
	_ = decryptCmd.MarkFlagRequired("wtns")
	_ = decryptCmd.MarkFlagRequired("blob")
}

func cmdDecrypt(cmd *cobra.Command, args []string) {
	cs := loadCircuit(filepath.Clean(args[0]))
	full := loadFullAssignment(cs, fWtnsPath)

	blob, err := os.ReadFile(filepath.Clean(fBlobPath))
	if err != nil {
		fatal("can't read blob:", err)
	}

	message, err := compile(cs).Decrypt(blob, full)
	if err != nil {
		fatal("decryption failed:", err)
	}

	if fDecryptOut == "" {
		_, _ = os.Stdout.Write(message)
		return
	}
	writeFile(fDecryptOut, message)
}
