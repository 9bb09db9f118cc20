package mt

// SYS subsystem: device control, versioning, and the OSAL NV storage
// commands the NVRAM layer is built on.

var SysResetReq = &Command{
	Subsystem: SYS, Type: AREQ, ID: 0x00, Name: "SYS.RESET_REQ",
	Req: []Field{{Name: "Type", Type: U8}},
}

var SysPing = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x01, Name: "SYS.PING",
	Rsp: []Field{{Name: "Capabilities", Type: U16}},
}

var SysVersion = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x02, Name: "SYS.VERSION",
	Rsp: []Field{
		{Name: "TransportRev", Type: U8},
		{Name: "Product", Type: U8},
		{Name: "MajorRel", Type: U8},
		{Name: "MinorRel", Type: U8},
		{Name: "MaintRel", Type: U8},
		// Z-Stack 3.x appends CodeRevision (u32), bootloader build type
		// (u8) and bootloader revision (u32); older stacks stop here.
		{Name: "Extra", Type: RestBytes},
	},
}

var SysSetExtAddr = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x03, Name: "SYS.SET_EXT_ADDR",
	Req: []Field{{Name: "ExtAddr", Type: IEEE}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysGetExtAddr = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x04, Name: "SYS.GET_EXT_ADDR",
	Rsp: []Field{{Name: "ExtAddr", Type: IEEE}},
}

var SysRamRead = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x05, Name: "SYS.RAM_READ",
	Req: []Field{{Name: "Address", Type: U16}, {Name: "Len", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}, {Name: "Value", Type: ShortBytes}},
}

var SysRamWrite = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x06, Name: "SYS.RAM_WRITE",
	Req: []Field{{Name: "Address", Type: U16}, {Name: "Value", Type: ShortBytes}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysOsalNvItemInit = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x07, Name: "SYS.OSAL_NV_ITEM_INIT",
	Req: []Field{
		{Name: "Id", Type: U16},
		{Name: "ItemLen", Type: U16},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysOsalNvRead = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x08, Name: "SYS.OSAL_NV_READ",
	Req: []Field{{Name: "Id", Type: U16}, {Name: "Offset", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}, {Name: "Value", Type: ShortBytes}},
}

var SysOsalNvWrite = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x09, Name: "SYS.OSAL_NV_WRITE",
	Req: []Field{
		{Name: "Id", Type: U16},
		{Name: "Offset", Type: U8},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysOsalStartTimer = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0A, Name: "SYS.OSAL_START_TIMER",
	Req: []Field{{Name: "Id", Type: U8}, {Name: "Timeout", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysOsalStopTimer = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0B, Name: "SYS.OSAL_STOP_TIMER",
	Req: []Field{{Name: "Id", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysRandom = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0C, Name: "SYS.RANDOM",
	Rsp: []Field{{Name: "Value", Type: U16}},
}

var SysAdcRead = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0D, Name: "SYS.ADC_READ",
	Req: []Field{{Name: "Channel", Type: U8}, {Name: "Resolution", Type: U8}},
	Rsp: []Field{{Name: "Value", Type: U16}},
}

var SysGpio = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0E, Name: "SYS.GPIO",
	Req: []Field{{Name: "Operation", Type: U8}, {Name: "Value", Type: U8}},
	Rsp: []Field{{Name: "Value", Type: U8}},
}

var SysStackTune = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x0F, Name: "SYS.STACK_TUNE",
	Req: []Field{{Name: "Operation", Type: U8}, {Name: "Value", Type: I8}},
	Rsp: []Field{{Name: "Value", Type: U8}},
}

var SysSetTime = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x10, Name: "SYS.SET_TIME",
	Req: []Field{
		{Name: "UTCTime", Type: U32},
		{Name: "Hour", Type: U8},
		{Name: "Minute", Type: U8},
		{Name: "Second", Type: U8},
		{Name: "Month", Type: U8},
		{Name: "Day", Type: U8},
		{Name: "Year", Type: U16},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysGetTime = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x11, Name: "SYS.GET_TIME",
	Rsp: []Field{
		{Name: "UTCTime", Type: U32},
		{Name: "Hour", Type: U8},
		{Name: "Minute", Type: U8},
		{Name: "Second", Type: U8},
		{Name: "Month", Type: U8},
		{Name: "Day", Type: U8},
		{Name: "Year", Type: U16},
	},
}

var SysOsalNvDelete = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x12, Name: "SYS.OSAL_NV_DELETE",
	Req: []Field{{Name: "Id", Type: U16}, {Name: "ItemLen", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysOsalNvLength = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x13, Name: "SYS.OSAL_NV_LENGTH",
	Req: []Field{{Name: "Id", Type: U16}},
	Rsp: []Field{{Name: "ItemLen", Type: U16}},
}

var SysSetTxPower = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x14, Name: "SYS.SET_TX_POWER",
	Req: []Field{{Name: "TXPower", Type: I8}},
	Rsp: []Field{{Name: "TXPower", Type: I8}},
}

var SysZDiagsInitStats = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x17, Name: "SYS.ZDIAGS_INIT_STATS",
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysZDiagsClearStats = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x18, Name: "SYS.ZDIAGS_CLEAR_STATS",
	Req: []Field{{Name: "ClearNV", Type: Bool8}},
	Rsp: []Field{{Name: "SysClock", Type: U32}},
}

var SysZDiagsGetStats = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x19, Name: "SYS.ZDIAGS_GET_STATS",
	Req: []Field{{Name: "AttributeID", Type: U16}},
	Rsp: []Field{{Name: "AttributeValue", Type: U32}},
}

var SysOsalNvReadExt = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x1C, Name: "SYS.OSAL_NV_READ_EXT",
	Req: []Field{{Name: "Id", Type: U16}, {Name: "Offset", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}, {Name: "Value", Type: ShortBytes}},
}

var SysOsalNvWriteExt = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x1D, Name: "SYS.OSAL_NV_WRITE_EXT",
	Req: []Field{
		{Name: "Id", Type: U16},
		{Name: "Offset", Type: U16},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

// Extended OSAL NV, Z-Stack 3.30 and later.

var SysNvCreate = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x30, Name: "SYS.NV_CREATE",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
		{Name: "Length", Type: U32},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysNvDelete = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x31, Name: "SYS.NV_DELETE",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysNvLength = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x32, Name: "SYS.NV_LENGTH",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
	},
	Rsp: []Field{{Name: "Length", Type: U32}},
}

var SysNvRead = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x33, Name: "SYS.NV_READ",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
		{Name: "Offset", Type: U16},
		{Name: "Length", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}, {Name: "Value", Type: ShortBytes}},
}

var SysNvWrite = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x34, Name: "SYS.NV_WRITE",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
		{Name: "Offset", Type: U16},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysNvUpdate = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x35, Name: "SYS.NV_UPDATE",
	Req: []Field{
		{Name: "SysId", Type: U8},
		{Name: "ItemId", Type: U16},
		{Name: "SubId", Type: U16},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysNvCompact = &Command{
	Subsystem: SYS, Type: SREQ, ID: 0x36, Name: "SYS.NV_COMPACT",
	Req: []Field{{Name: "Threshold", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SysResetInd = &Command{
	Subsystem: SYS, Type: AREQ, ID: 0x80, Name: "SYS.RESET_IND",
	Req: []Field{
		{Name: "Reason", Type: U8},
		{Name: "TransportRev", Type: U8},
		{Name: "Product", Type: U8},
		{Name: "MajorRel", Type: U8},
		{Name: "MinorRel", Type: U8},
		{Name: "HwRev", Type: U8},
	},
}

var SysOsalTimerExpired = &Command{
	Subsystem: SYS, Type: AREQ, ID: 0x81, Name: "SYS.OSAL_TIMER_EXPIRED",
	Req: []Field{{Name: "Id", Type: U8}},
}

func init() {
	register(
		SysResetReq, SysPing, SysVersion, SysSetExtAddr, SysGetExtAddr,
		SysRamRead, SysRamWrite,
		SysOsalNvItemInit, SysOsalNvRead, SysOsalNvWrite,
		SysOsalStartTimer, SysOsalStopTimer, SysRandom, SysAdcRead,
		SysGpio, SysStackTune, SysSetTime, SysGetTime,
		SysOsalNvDelete, SysOsalNvLength, SysSetTxPower,
		SysZDiagsInitStats, SysZDiagsClearStats, SysZDiagsGetStats,
		SysOsalNvReadExt, SysOsalNvWriteExt,
		SysNvCreate, SysNvDelete, SysNvLength, SysNvRead, SysNvWrite,
		SysNvUpdate, SysNvCompact,
		SysResetInd, SysOsalTimerExpired,
	)
}
