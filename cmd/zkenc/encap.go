package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var encapCmd = &cobra.Command{
	Use:   "encap [circuit.r1cs]",
	Short: "derives a fresh key for the circuit and public inputs, printing it in hex",
	Args:  cobra.ExactArgs(1),
	Run:   cmdEncap,
}

var (
	fEncapSym    string
	fEncapInputs string
	fEncapOut    string
)

func init() {
	rootCmd.AddCommand(encapCmd)
	encapCmd.Flags().StringVar(&fEncapSym, "sym", "", "signal-map file produced by the circuit compiler")
	encapCmd.Flags().StringVar(&fEncapInputs, "inputs", "", "JSON document of public inputs")
	encapCmd.Flags().StringVar(&fEncapOut, "out", "", "output path for the encapsulation -- default is ./[circuit].ct")
	_ = encapCmd.MarkFlagRequired("sym")
	_ = encapCmd.MarkFlagRequired("inputs")
}

func cmdEncap(cmd *cobra.Command, args []string) {
	circuitPath := filepath.Clean(args[0])
	cs := loadCircuit(circuitPath)
	public := loadPublicAssignment(cs, fEncapSym, fEncapInputs)

	encapsulation, key, err := compile(cs).Encap(public, rand.Reader)
	if err != nil {
		fatal("encapsulation failed:", err)
	}

	out := fEncapOut
	if out == "" {
		out = defaultOut(circuitPath, ".ct")
	}
	writeFile(out, encapsulation)
	fmt.Println("key:", hex.EncodeToString(key[:]))
}
