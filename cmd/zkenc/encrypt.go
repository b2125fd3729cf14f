package main

import (
	"crypto/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zkenc/zkenc"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [circuit.r1cs]",
	Short: "encrypts a message against a circuit and its public inputs",
	Args:  cobra.ExactArgs(1),
	Run:   cmdEncrypt,
}

var (
	fSymPath     string
	fInputsPath  string
	fMessagePath string
	fOutPath     string
	fEmbedInputs bool
)

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVar(&fSymPath, "sym", "", "signal-map file produced by the circuit compiler")
	encryptCmd.Flags().StringVar(&fInputsPath, "inputs", "", "JSON document of public inputs")
	encryptCmd.Flags().StringVar(&fMessagePath, "msg", "", "file holding the plaintext message")
	encryptCmd.Flags().StringVar(&fOutPath, "out", "", "output path -- default is ./[circuit].zkenc")
	encryptCmd.Flags().BoolVar(&fEmbedInputs, "embed-inputs", false, "embed the public-input JSON into the blob")
	_ = encryptCmd.MarkFlagRequired("sym")
	_ = encryptCmd.MarkFlagRequired("inputs")
	_ = encryptCmd.MarkFlagRequired("msg")
}

func cmdEncrypt(cmd *cobra.Command, args []string) {
	circuitPath := filepath.Clean(args[0])
	cs := loadCircuit(circuitPath)
	public := loadPublicAssignment(cs, fSymPath, fInputsPath)

	message, err := os.ReadFile(filepath.Clean(fMessagePath))
	if err != nil {
		fatal("can't read message:", err)
	}

	var opts []zkenc.EncryptOption
	if fEmbedInputs {
		opts = append(opts, zkenc.WithEmbeddedInputs(readInputsDoc(fInputsPath)))
	}

	blob, err := compile(cs).Encrypt(public, message, rand.Reader, opts...)
	if err != nil {
		fatal("encryption failed:", err)
	}

	out := fOutPath
	if out == "" {
		out = defaultOut(circuitPath, ".zkenc")
	}
	writeFile(out, blob)
}

func defaultOut(circuitPath, ext string) string {
	name := filepath.Base(circuitPath)
	name = name[:len(name)-len(filepath.Ext(name))]
	return name + ext
}
