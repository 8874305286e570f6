// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

//go:build !linux && !darwin

package mem

import "fmt"

func GetTotalMem() (uint64, error) {
	return 0, fmt.Errorf("memory size unavailable on this platform")
}

func GetAvailMem() (uint64, error) {
	return 0, fmt.Errorf("memory size unavailable on this platform")
}
