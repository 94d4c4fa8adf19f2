// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Register-level debug access to the sensor: dump the configuration and
// status registers, or read/write a single register. Raw bus access only;
// the device is not reconfigured.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/relabs-tech/motion_logger/internal/bus"
	"github.com/relabs-tech/motion_logger/internal/config"
	"github.com/relabs-tech/motion_logger/internal/mpu6050"
)

func main() {
	configPath := flag.String("config", "./motion_config.txt", "path to configuration file")
	dump := flag.Bool("dump", false, "dump all named registers")
	readReg := flag.String("read", "", "read a single register, e.g. 0x6B")
	writeReg := flag.String("write", "", "register to write, e.g. 0x6B (requires -value)")
	value := flag.String("value", "", "value for -write, e.g. 0x01")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	ch, err := bus.Open(cfg.I2CBus, cfg.I2CAddr, cfg.BusRetries,
		time.Duration(cfg.BusRetryBackoff)*time.Millisecond)
	if err != nil {
		log.Fatalf("bus channel: %v", err)
	}
	defer ch.Close()

	switch {
	case *dump:
		dumpRegisters(ch)

	case *readReg != "":
		reg := parseByte(*readReg)
		val, err := ch.ReadReg(reg)
		if err != nil {
			log.Fatalf("read 0x%02X: %v", reg, err)
		}
		fmt.Printf("0x%02X %-12s = 0x%02X (0b%08b)\n", reg, name(reg), val, val)

	case *writeReg != "":
		if *value == "" {
			log.Fatal("-write requires -value")
		}
		reg := parseByte(*writeReg)
		val := parseByte(*value)
		if err := ch.WriteReg(reg, val); err != nil {
			log.Fatalf("write 0x%02X: %v", reg, err)
		}
		got, err := ch.ReadReg(reg)
		if err != nil {
			log.Fatalf("read back 0x%02X: %v", reg, err)
		}
		fmt.Printf("0x%02X %-12s wrote 0x%02X, reads 0x%02X\n", reg, name(reg), val, got)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func dumpRegisters(ch bus.Channel) {
	regs := make([]int, 0, len(mpu6050.RegisterNames))
	for reg := range mpu6050.RegisterNames {
		regs = append(regs, int(reg))
	}
	sort.Ints(regs)

	for _, reg := range regs {
		val, err := ch.ReadReg(byte(reg))
		if err != nil {
			fmt.Printf("0x%02X %-12s read error: %v\n", reg, name(byte(reg)), err)
			continue
		}
		fmt.Printf("0x%02X %-12s = 0x%02X (0b%08b)\n", reg, name(byte(reg)), val, val)
	}
}

func name(reg byte) string {
	if n, ok := mpu6050.RegisterNames[reg]; ok {
		return n
	}
	return "-"
}

func parseByte(s string) byte {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		log.Fatalf("invalid register/value %q: %v", s, err)
	}
	return byte(v)
}
