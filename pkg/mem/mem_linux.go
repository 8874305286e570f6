// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package mem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func readMeminfo(field string) (uint64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		name, val, ok := strings.Cut(s.Text(), ":")
		if !ok || name != field {
			continue
		}
		kb, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimSpace(val), " kB"), 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("field %q not found in /proc/meminfo", field)
}

func GetTotalMem() (uint64, error) {
	return readMeminfo("MemTotal")
}

// GetAvailMem prefers MemAvailable, which counts reclaimable page cache, and
// falls back to MemFree on old kernels.
func GetAvailMem() (uint64, error) {
	if n, err := readMeminfo("MemAvailable"); err == nil {
		return n, nil
	}
	return readMeminfo("MemFree")
}
