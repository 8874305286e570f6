// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package mem

import (
	"os/exec"
	"strconv"
	"strings"
)

func sysctl(name string) (uint64, error) {
	out, err := exec.Command("sysctl", "-n", name).Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
}

func GetTotalMem() (uint64, error) {
	return sysctl("hw.memsize")
}

// GetAvailMem counts free and inactive pages.
func GetAvailMem() (uint64, error) {
	pageSize, err := sysctl("hw.pagesize")
	if err != nil {
		return 0, err
	}
	free, err := sysctl("vm.page_free_count")
	if err != nil {
		return 0, err
	}
	inactive, err := sysctl("vm.page_inactive_count")
	if err != nil {
		inactive = 0
	}
	return (free + inactive) * pageSize, nil
}
