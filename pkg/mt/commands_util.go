package mt

// UTIL subsystem: device info, configuration shortcuts, and the
// association table accessors the device table is rebuilt from.

var UtilGetDeviceInfo = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x00, Name: "UTIL.GET_DEVICE_INFO",
	Rsp: []Field{
		{Name: "Status", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "DeviceType", Type: U8},
		{Name: "DeviceState", Type: U8},
		{Name: "AssocDevices", Type: StructList, Struct: []Field{{Name: "Addr", Type: NWKAddr}}},
	},
}

var UtilGetNvInfo = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x01, Name: "UTIL.GET_NV_INFO",
	Rsp: []Field{
		{Name: "Status", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "ScanChannels", Type: ChannelMask},
		{Name: "PanId", Type: U16},
		{Name: "SecurityLevel", Type: U8},
		{Name: "PreConfigKey", Type: FixedBytes, Size: 16},
	},
}

var UtilSetPanId = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x02, Name: "UTIL.SET_PANID",
	Req: []Field{{Name: "PanId", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilSetChannels = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x03, Name: "UTIL.SET_CHANNELS",
	Req: []Field{{Name: "Channels", Type: ChannelMask}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilSetSecLevel = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x04, Name: "UTIL.SET_SECLEVEL",
	Req: []Field{{Name: "SecurityLevel", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilSetPreCfgKey = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x05, Name: "UTIL.SET_PRECFGKEY",
	Req: []Field{{Name: "PreConfigKey", Type: FixedBytes, Size: 16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilCallbackSubCmd = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x06, Name: "UTIL.CALLBACK_SUB_CMD",
	Req: []Field{
		{Name: "SubsystemId", Type: U16},
		{Name: "Action", Type: Bool8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilKeyEvent = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x07, Name: "UTIL.KEY_EVENT",
	Req: []Field{{Name: "Shift", Type: Bool8}, {Name: "Key", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilTimeAlive = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x09, Name: "UTIL.TIME_ALIVE",
	Rsp: []Field{{Name: "Seconds", Type: U32}},
}

var UtilLedControl = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x0A, Name: "UTIL.LED_CONTROL",
	Req: []Field{{Name: "LedId", Type: U8}, {Name: "Mode", Type: U8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilLoopback = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x10, Name: "UTIL.LOOPBACK",
	Req: []Field{{Name: "Data", Type: RestBytes}},
	Rsp: []Field{{Name: "Data", Type: RestBytes}},
}

var UtilDataReq = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x11, Name: "UTIL.DATA_REQ",
	Req: []Field{{Name: "SecurityUse", Type: Bool8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilSrcMatchEnable = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x20, Name: "UTIL.SRC_MATCH_ENABLE",
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilSrcMatchAddEntry = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x21, Name: "UTIL.SRC_MATCH_ADD_ENTRY",
	Req: []Field{
		{Name: "AddrMode", Type: U8},
		{Name: "Address", Type: IEEE},
		{Name: "PanId", Type: U16},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var UtilAssocCount = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x48, Name: "UTIL.ASSOC_COUNT",
	Req: []Field{
		{Name: "StartRelation", Type: U8},
		{Name: "EndRelation", Type: U8},
	},
	Rsp: []Field{{Name: "Count", Type: U16}},
}

// The association device record returned by the ASSOC_* commands, as laid
// out in RAM by the firmware.
var assocDevice = []Field{
	{Name: "ShortAddr", Type: NWKAddr},
	{Name: "AddrIdx", Type: U16},
	{Name: "NodeRelation", Type: U8},
	{Name: "DevStatus", Type: U8},
	{Name: "AssocCnt", Type: U8},
	{Name: "Age", Type: U8},
	{Name: "LinkInfo", Type: FixedBytes, Size: 4},
	{Name: "EndDev", Type: FixedBytes, Size: 8},
	{Name: "TimeoutCounter", Type: U32},
	{Name: "KeepaliveRcv", Type: Bool8},
}

var UtilAssocFindDevice = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x49, Name: "UTIL.ASSOC_FIND_DEVICE",
	Req: []Field{{Name: "Index", Type: U8}},
	Rsp: assocDevice,
}

var UtilAssocGetWithAddress = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x4A, Name: "UTIL.ASSOC_GET_WITH_ADDRESS",
	Req: []Field{
		{Name: "ExtAddr", Type: IEEE},
		{Name: "NwkAddr", Type: NWKAddr},
	},
	Rsp: assocDevice,
}

var UtilBindAddEntry = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x4D, Name: "UTIL.BIND_ADD_ENTRY",
	Req: []Field{
		{Name: "AddrMode", Type: U8},
		{Name: "DstAddr", Type: IEEE},
		{Name: "DstEndpoint", Type: U8},
		{Name: "ClusterIds", Type: StructList, Struct: clusterList},
	},
	Rsp: []Field{{Name: "BindEntry", Type: RestBytes}},
}

var UtilSrngGen = &Command{
	Subsystem: UTIL, Type: SREQ, ID: 0x4C, Name: "UTIL.SRNG_GEN",
	Rsp: []Field{{Name: "SecureRandomNumbers", Type: FixedBytes, Size: 100}},
}

var UtilSyncReq = &Command{
	Subsystem: UTIL, Type: AREQ, ID: 0xE0, Name: "UTIL.SYNC_REQ",
}

func init() {
	register(
		UtilGetDeviceInfo, UtilGetNvInfo, UtilSetPanId, UtilSetChannels,
		UtilSetSecLevel, UtilSetPreCfgKey, UtilCallbackSubCmd, UtilKeyEvent,
		UtilTimeAlive, UtilLedControl, UtilLoopback, UtilDataReq,
		UtilSrcMatchEnable, UtilSrcMatchAddEntry,
		UtilAssocCount, UtilAssocFindDevice, UtilAssocGetWithAddress,
		UtilBindAddEntry, UtilSrngGen, UtilSyncReq,
	)
}
