// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command pdfrender renders one page of a PDF file to a PNG image.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"syscall"

	"golang.org/x/term"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/engine"
)

func main() {
	pageNum := flag.Int("page", 1, "page number to render (1-based)")
	ssaa := flag.Int("ssaa", 2, "supersampling factor (1, 2 or 4)")
	passwdArg := flag.String("p", "", "PDF password")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.pdf output.png\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputFile, outputFile := flag.Arg(0), flag.Arg(1)

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New()
	doc, err := eng.Open(data, &pdf.Options{ReadPassword: readPassword(passwdArg)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PDF: %v\n", err)
		os.Exit(1)
	}

	img, err := doc.Render(*pageNum-1, *ssaa)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering page: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully rendered page %d of %s to %s\n", *pageNum, inputFile, outputFile)
}

// readPassword prompts on the terminal for a PDF password, following
// examples/pdf-inspect/main.go's tryPasswd pattern: the -p flag is tried
// first, on the first attempt only, falling back to an interactive prompt
// for every subsequent retry.
func readPassword(passwdArg *string) func(tried []byte, needOwner int) string {
	return func(tried []byte, needOwner int) string {
		if *passwdArg != "" && tried == nil {
			return *passwdArg
		}
		fmt.Print("password: ")
		passwd, _ := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		return string(passwd)
	}
}
