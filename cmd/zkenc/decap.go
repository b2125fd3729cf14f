package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var decapCmd = &cobra.Command{
	Use:   "decap [circuit.r1cs]",
	Short: "recovers the key from an encapsulation with a satisfying witness, printing it in hex",
	Args:  cobra.ExactArgs(1),
	Run:   cmdDecap,
}

var (
	fDecapWtns string
	fDecapCt   string
)

func init() {
	rootCmd.AddCommand(decapCmd)
	decapCmd.Flags().StringVar(&fDecapWtns, "wtns", "", "witness file produced by the circuit's witness generator")
	decapCmd.Flags().StringVar(&fDecapCt, "ct", "", "encapsulation produced by encap")
	_ = decapCmd.MarkFlagRequired("wtns")
	_ = decapCmd.MarkFlagRequired("ct")
}

func cmdDecap(cmd *cobra.Command, args []string) {
	cs := loadCircuit(filepath.Clean(args[0]))
	full := loadFullAssignment(cs, fDecapWtns)

	encapsulation, err := os.ReadFile(filepath.Clean(fDecapCt))
	if err != nil {
		fatal("can't read encapsulation:", err)
	}

	key, err := compile(cs).Decap(encapsulation, full)
	if err != nil {
		fatal("decapsulation failed:", err)
	}
	fmt.Println("key:", hex.EncodeToString(key[:]))
}
