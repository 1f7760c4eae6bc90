// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
)

// Well known EFI Configuration Table GUIDs
var (
	ACPI_TABLE_GUID      = MustParseGUID("eb9d2d30-2d88-11d3-9a16-0090273fc14d")
	ACPI_20_TABLE_GUID   = MustParseGUID("8868e871-e4f1-11d3-bc22-0080c73c8881")
	SMBIOS_TABLE_GUID    = MustParseGUID("eb9d2d31-2d88-11d3-9a16-0090273fc14d")
	SMBIOS3_TABLE_GUID   = MustParseGUID("f2fd1544-9794-4a2c-992e-e5bbcf20e394")
	EFI_DTB_TABLE_GUID   = MustParseGUID("b1b621d5-f19c-41a5-830b-d9152c69aae0")
	MEMORY_ATTRIBUTES_ID = MustParseGUID("dcfa911d-26eb-469f-a220-38b7dc461220")
)

var tableNames = map[GUID]string{
	ACPI_TABLE_GUID:      "ACPI 1.0",
	ACPI_20_TABLE_GUID:   "ACPI 2.0",
	SMBIOS_TABLE_GUID:    "SMBIOS",
	SMBIOS3_TABLE_GUID:   "SMBIOS 3.0",
	EFI_DTB_TABLE_GUID:   "Device Tree",
	MEMORY_ATTRIBUTES_ID: "Memory Attributes",
}

// ConfigurationTable represents an EFI Configuration Table.
type ConfigurationTable struct {
	GUID        GUID
	VendorTable uint64
}

// Name returns the table name when known, its GUID otherwise.
func (t *ConfigurationTable) Name() string {
	if name, ok := tableNames[t.GUID]; ok {
		return name
	}

	return t.GUID.String()
}

// parseConfigurationTables decodes a raw configuration table array.
func parseConfigurationTables(buf []byte, n int) (c []*ConfigurationTable, err error) {
	const entrySize = 24

	if len(buf) < n*entrySize {
		return nil, errors.New("invalid EFI Configuration Table size")
	}

	for i := 0; i < n*entrySize; i += entrySize {
		t := &ConfigurationTable{}

		if err = unmarshalBinary(buf[i:i+entrySize], t); err != nil {
			return
		}

		c = append(c, t)
	}

	return
}

// ConfigurationTables returns the EFI Configuration Tables.
func (d *SystemTable) ConfigurationTables() (c []*ConfigurationTable, err error) {
	if d.NumberOfTableEntries == 0 || d.ConfigurationTable == 0 {
		return nil, errors.New("EFI Configuration Table is invalid")
	}

	n := int(d.NumberOfTableEntries)
	buf, err := view(d.ConfigurationTable, n*24)

	if err != nil {
		return
	}

	return parseConfigurationTables(buf, n)
}

// LocateConfiguration locates an EFI Configuration Table.
func (d *SystemTable) LocateConfiguration(guid GUID) (t *ConfigurationTable, err error) {
	var c []*ConfigurationTable

	if c, err = d.ConfigurationTables(); err != nil {
		return
	}

	for _, t := range c {
		if t.GUID == guid {
			return t, nil
		}
	}

	return nil, errors.New("could not find configuration table")
}
