// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package main

import (
	"os"

	"github.com/hallewell/modelink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
