// zkenc is a CLI for witness encryption over compiled circuits: encrypt a
// message against a circuit and public inputs, decrypt it with a satisfying
// witness file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zkenc/zkenc"
)

var rootCmd = &cobra.Command{
	Use:     "zkenc",
	Short:   "witness encryption for compiled arithmetic circuits",
	Version: zkenc.Version.String(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
}
