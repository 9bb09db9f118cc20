// Package nvram reads, writes, and snapshots the coprocessor's OSAL
// non-volatile storage across the legacy and extended layouts.
package nvram

import "fmt"

// Flavour identifies the firmware generation, which decides which NV
// layout is in use and which items exist.
type Flavour int

const (
	// ZStack12 is Z-Stack Home 1.2 (CC2531-era).
	ZStack12 Flavour = iota
	// ZStack30 is Z-Stack 3.0.x.
	ZStack30
	// ZStack3x is Z-Stack 3.30 and later (CC26x2/CC13x2), which moves
	// the large tables to the extended layout.
	ZStack3x
)

func (f Flavour) String() string {
	switch f {
	case ZStack12:
		return "Z-Stack 1.2"
	case ZStack30:
		return "Z-Stack 3.0"
	case ZStack3x:
		return "Z-Stack 3.x"
	}
	return fmt.Sprintf("Flavour(%d)", int(f))
}

// NVID is a legacy OSAL NV item id.
type NVID uint16

// Legacy OSAL NV items, as numbered by the firmware.
const (
	NVExtAddr       NVID = 0x0001
	NVBootCounter   NVID = 0x0002
	NVStartupOption NVID = 0x0003
	NVStartDelay    NVID = 0x0004

	NVNib                 NVID = 0x0021
	NVDeviceList          NVID = 0x0022
	NVAddrMgr             NVID = 0x0023
	NVPollRate            NVID = 0x0024
	NVDataRetries         NVID = 0x0028
	NVStackProfile        NVID = 0x002A
	NVIndirectMsgTimeout  NVID = 0x002B
	NVRouteExpiryTime     NVID = 0x002C
	NVExtendedPanID       NVID = 0x002D
	NVBcastRetries        NVID = 0x002E
	NVPassiveAckTimeout   NVID = 0x002F
	NVBcastDeliveryTime   NVID = 0x0030
	NVConcentratorEnable  NVID = 0x0032
	NVConcentratorDisc    NVID = 0x0033
	NVConcentratorRadius  NVID = 0x0034
	NVConcentratorRC      NVID = 0x0036
	NVSrcRtgExpiryTime    NVID = 0x0038
	NVRouteDiscoveryTime  NVID = 0x0039
	NVNwkActiveKeyInfo    NVID = 0x003A
	NVNwkAlternKeyInfo    NVID = 0x003B
	NVNwkLeaveReqAllowed  NVID = 0x003D
	NVNwkChildAgeEnable   NVID = 0x003E
	NVBindingTable        NVID = 0x0041
	NVGroupTable          NVID = 0x0042
	NVApsFrameRetries     NVID = 0x0043
	NVApsUseExtPanID      NVID = 0x0047
	NVApsLinkKeyTable     NVID = 0x004C
	NVNwkParentInfo       NVID = 0x0051
	NVNwkEnddevTimeoutDef NVID = 0x0052
	NVEndDevConfiguration NVID = 0x0054
	NVBdbNodeIsOnANetwork NVID = 0x0055

	NVHasConfiguredZStack3 NVID = 0x0060
	NVSecurityLevel        NVID = 0x0061
	NVPreCfgKey            NVID = 0x0062
	NVPreCfgKeysEnable     NVID = 0x0063
	NVSecurityMode         NVID = 0x0064
	NVUseDefaultTCLK       NVID = 0x006D
	NVRngCounter           NVID = 0x006F
	NVRandomSeed           NVID = 0x0070
	NVTrustCenterAddr      NVID = 0x0071

	NVNwkKey      NVID = 0x0082
	NVPanID       NVID = 0x0083
	NVChanList    NVID = 0x0084
	NVLogicalType NVID = 0x0087
	NVZdoDirectCB NVID = 0x008F

	// Same id, different meaning per generation: a TCLK entry table on
	// 1.2, the TCLK seed on 3.x.
	NVTclkTableStart NVID = 0x0101
	NVTclkSeed       NVID = 0x0101

	NVHasConfiguredZStack1 NVID = 0x0F00
)

// NvSysID addresses the extended layout's system partition.
type NvSysID uint8

const (
	SysNvDrvr  NvSysID = 0
	SysZStack  NvSysID = 1
	SysTIMac   NvSysID = 2
	SysRemoTI  NvSysID = 3
	SysBLE     NvSysID = 4
	SysSixMesh NvSysID = 5
	SysTIOP    NvSysID = 6
)

// ExNVID is an extended OSAL NV item id within a system partition.
type ExNVID uint16

// Extended items under SysZStack, Z-Stack 3.30+.
const (
	ExLegacy          ExNVID = 0x0000
	ExAddrMgr         ExNVID = 0x0001
	ExBindingTable    ExNVID = 0x0002
	ExDeviceList      ExNVID = 0x0003
	ExTclkTable       ExNVID = 0x0004
	ExTclkICTable     ExNVID = 0x0005
	ExApsKeyDataTable ExNVID = 0x0006
	ExNwkSecMaterial  ExNVID = 0x0007
)

// ExtKey addresses one extended layout item instance.
type ExtKey struct {
	SysID  NvSysID
	ItemID ExNVID
	SubID  uint16
}

func (k ExtKey) String() string {
	return fmt.Sprintf("%02x:%04x:%04x", uint8(k.SysID), uint16(k.ItemID), k.SubID)
}

// HasConfiguredMagic is the marker byte the driver writes once the
// coordinator has been fully configured.
const HasConfiguredMagic = 0x55

// HasConfiguredItem returns the per-flavour "configured" marker id.
func HasConfiguredItem(f Flavour) NVID {
	if f == ZStack12 {
		return NVHasConfiguredZStack1
	}
	return NVHasConfiguredZStack3
}

// legacyBackupItems is the catalogued legacy item set per flavour,
// iterated exhaustively during backup. Missing items are recorded as
// absent, never raised.
var legacyBackupItems = map[Flavour][]NVID{
	ZStack12: {
		NVExtAddr, NVNib, NVDeviceList, NVAddrMgr,
		NVExtendedPanID, NVNwkActiveKeyInfo, NVNwkAlternKeyInfo,
		NVBindingTable, NVApsUseExtPanID, NVApsLinkKeyTable,
		NVSecurityLevel, NVPreCfgKey, NVPreCfgKeysEnable,
		NVUseDefaultTCLK, NVTrustCenterAddr, NVNwkKey, NVPanID,
		NVChanList, NVLogicalType, NVZdoDirectCB, NVTclkTableStart,
		NVHasConfiguredZStack1,
	},
	ZStack30: {
		NVExtAddr, NVNib, NVDeviceList, NVAddrMgr,
		NVExtendedPanID, NVNwkActiveKeyInfo, NVNwkAlternKeyInfo,
		NVBindingTable, NVApsUseExtPanID, NVApsLinkKeyTable,
		NVBdbNodeIsOnANetwork, NVHasConfiguredZStack3, NVSecurityLevel,
		NVPreCfgKey, NVPreCfgKeysEnable, NVUseDefaultTCLK,
		NVTrustCenterAddr, NVNwkKey, NVPanID, NVChanList,
		NVLogicalType, NVZdoDirectCB, NVTclkSeed,
	},
	ZStack3x: {
		NVExtAddr, NVNib, NVExtendedPanID,
		NVNwkActiveKeyInfo, NVNwkAlternKeyInfo, NVApsUseExtPanID,
		NVBdbNodeIsOnANetwork, NVHasConfiguredZStack3, NVSecurityLevel,
		NVPreCfgKey, NVPreCfgKeysEnable, NVUseDefaultTCLK,
		NVTrustCenterAddr, NVNwkKey, NVPanID, NVChanList,
		NVLogicalType, NVZdoDirectCB, NVTclkSeed,
	},
}

// extendedBackupTables lists the extended tables iterated (by sub id)
// during backup on firmware that has them.
var extendedBackupTables = map[Flavour][]ExNVID{
	ZStack3x: {
		ExAddrMgr, ExBindingTable, ExDeviceList, ExTclkTable,
		ExTclkICTable, ExApsKeyDataTable, ExNwkSecMaterial,
	},
}

// networkResetItems is the per-flavour item set a network-only reset
// clears. The composition is firmware-version dependent and is carried
// verbatim rather than derived.
var networkResetItems = map[Flavour][]NVID{
	ZStack12: {
		NVNib, NVDeviceList, NVAddrMgr, NVExtendedPanID,
		NVNwkActiveKeyInfo, NVNwkAlternKeyInfo, NVBindingTable,
		NVApsLinkKeyTable, NVNwkKey, NVPanID, NVTclkTableStart,
		NVHasConfiguredZStack1,
	},
	ZStack30: {
		NVNib, NVDeviceList, NVAddrMgr, NVExtendedPanID,
		NVNwkActiveKeyInfo, NVNwkAlternKeyInfo, NVBindingTable,
		NVApsLinkKeyTable, NVBdbNodeIsOnANetwork, NVNwkKey, NVPanID,
		NVHasConfiguredZStack3,
	},
	ZStack3x: {
		NVNib, NVExtendedPanID, NVNwkActiveKeyInfo,
		NVNwkAlternKeyInfo, NVBdbNodeIsOnANetwork, NVNwkKey, NVPanID,
		NVHasConfiguredZStack3,
	},
}

// LegacyBackupItems returns the catalogued legacy set for a flavour.
func LegacyBackupItems(f Flavour) []NVID {
	return legacyBackupItems[f]
}

// ExtendedBackupTables returns the extended tables for a flavour, nil
// when the flavour predates the extended layout.
func ExtendedBackupTables(f Flavour) []ExNVID {
	return extendedBackupTables[f]
}

// NetworkResetItems returns the items a network-only reset clears.
func NetworkResetItems(f Flavour) []NVID {
	return networkResetItems[f]
}
