package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zkenc/zkenc"
	"github.com/zkenc/zkenc/circom"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/signals"
	"github.com/zkenc/zkenc/witness"
)

func fatal(args ...interface{}) {
	fmt.Println(args...)
	os.Exit(-1)
}

func loadCircuit(path string) *constraint.R1CS {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		fatal("can't open circuit:", err)
	}
	defer f.Close()
	cs, err := circom.ReadR1CS(f)
	if err != nil {
		fatal("can't load circuit:", err)
	}
	fmt.Printf("%-30s %-30s %d constraints\n", "loaded circuit", path, cs.GetNbConstraints())
	return cs
}

func loadPublicAssignment(cs *constraint.R1CS, symPath, inputsPath string) *witness.Assignment {
	sf, err := os.Open(filepath.Clean(symPath))
	if err != nil {
		fatal("can't open symbol file:", err)
	}
	defer sf.Close()
	table, err := signals.ReadSym(sf)
	if err != nil {
		fatal("can't load symbol file:", err)
	}

	doc, err := os.ReadFile(filepath.Clean(inputsPath))
	if err != nil {
		fatal("can't read inputs:", err)
	}
	public, err := signals.Build(cs, table, doc)
	if err != nil {
		fatal("can't map inputs:", err)
	}
	return public
}

func loadFullAssignment(cs *constraint.R1CS, wtnsPath string) *witness.Assignment {
	f, err := os.Open(filepath.Clean(wtnsPath))
	if err != nil {
		fatal("can't open witness:", err)
	}
	defer f.Close()
	full, prime, err := circom.ReadWtns(f)
	if err != nil {
		fatal("can't load witness:", err)
	}
	if prime.Cmp(cs.Field()) != 0 {
		fatal("witness was generated over a different field than the circuit")
	}
	return full
}

func compile(cs *constraint.R1CS) *zkenc.System {
	s, err := zkenc.Compile(cs)
	if err != nil {
		fatal("can't compile circuit:", err)
	}
	return s
}

func readInputsDoc(path string) []byte {
	doc, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		fatal("can't read inputs:", err)
	}
	return doc
}

func writeFile(path string, data []byte) {
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		fatal("can't write", path+":", err)
	}
	fmt.Printf("%-30s %-30s %d bytes\n", "wrote", path, len(data))
}
