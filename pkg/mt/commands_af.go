package mt

// AF subsystem: application framework data plane.

var clusterList = []Field{{Name: "ClusterId", Type: U16}}

var AfRegister = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x00, Name: "AF.REGISTER",
	Req: []Field{
		{Name: "Endpoint", Type: U8},
		{Name: "ProfileId", Type: U16},
		{Name: "DeviceId", Type: U16},
		{Name: "DeviceVersion", Type: U8},
		{Name: "LatencyReq", Type: U8},
		{Name: "InputClusters", Type: StructList, Struct: clusterList},
		{Name: "OutputClusters", Type: StructList, Struct: clusterList},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AfDataRequest = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x01, Name: "AF.DATA_REQUEST",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DstEndpoint", Type: U8},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "TransId", Type: U8},
		{Name: "Options", Type: U8},
		{Name: "Radius", Type: U8},
		{Name: "Data", Type: ShortBytes},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: AfDataConfirm,
}

var AfDataRequestExt = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x02, Name: "AF.DATA_REQUEST_EXT",
	Req: []Field{
		{Name: "DstAddrMode", Type: U8},
		{Name: "DstAddr", Type: IEEE},
		{Name: "DstEndpoint", Type: U8},
		{Name: "DstPanId", Type: U16},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "TransId", Type: U8},
		{Name: "Options", Type: U8},
		{Name: "Radius", Type: U8},
		{Name: "Data", Type: LongBytes},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: AfDataConfirm,
}

var AfDataRequestSrcRtg = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x03, Name: "AF.DATA_REQUEST_SRC_RTG",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DstEndpoint", Type: U8},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "TransId", Type: U8},
		{Name: "Options", Type: U8},
		{Name: "Radius", Type: U8},
		{Name: "RelayList", Type: StructList, Struct: []Field{{Name: "Addr", Type: NWKAddr}}},
		{Name: "Data", Type: ShortBytes},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: AfDataConfirm,
}

var AfInterPanCtl = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x10, Name: "AF.INTER_PAN_CTL",
	Req: []Field{{Name: "Command", Type: U8}, {Name: "Data", Type: RestBytes}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AfDataStore = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x11, Name: "AF.DATA_STORE",
	Req: []Field{{Name: "Index", Type: U16}, {Name: "Data", Type: ShortBytes}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AfDataRetrieve = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x12, Name: "AF.DATA_RETRIEVE",
	Req: []Field{
		{Name: "Timestamp", Type: U32},
		{Name: "Index", Type: U16},
		{Name: "Length", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}, {Name: "Data", Type: ShortBytes}},
}

var AfApsfConfigSet = &Command{
	Subsystem: AF, Type: SREQ, ID: 0x13, Name: "AF.APSF_CONFIG_SET",
	Req: []Field{
		{Name: "Endpoint", Type: U8},
		{Name: "FrameDelay", Type: U8},
		{Name: "WindowSize", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AfDataConfirm = &Command{
	Subsystem: AF, Type: AREQ, ID: 0x80, Name: "AF.DATA_CONFIRM",
	Req: []Field{
		{Name: "Status", Type: U8},
		{Name: "Endpoint", Type: U8},
		{Name: "TransId", Type: U8},
	},
}

var AfIncomingMsg = &Command{
	Subsystem: AF, Type: AREQ, ID: 0x81, Name: "AF.INCOMING_MSG",
	Req: []Field{
		{Name: "GroupId", Type: U16},
		{Name: "ClusterId", Type: U16},
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "DstEndpoint", Type: U8},
		{Name: "WasBroadcast", Type: Bool8},
		{Name: "LQI", Type: U8},
		{Name: "SecurityUse", Type: Bool8},
		{Name: "Timestamp", Type: U32},
		{Name: "TransSeqNumber", Type: U8},
		{Name: "Data", Type: ShortBytes},
	},
}

var AfIncomingMsgExt = &Command{
	Subsystem: AF, Type: AREQ, ID: 0x82, Name: "AF.INCOMING_MSG_EXT",
	Req: []Field{
		{Name: "GroupId", Type: U16},
		{Name: "ClusterId", Type: U16},
		{Name: "SrcAddrMode", Type: U8},
		{Name: "SrcAddr", Type: IEEE},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "SrcPanId", Type: U16},
		{Name: "DstEndpoint", Type: U8},
		{Name: "WasBroadcast", Type: Bool8},
		{Name: "LQI", Type: U8},
		{Name: "SecurityUse", Type: Bool8},
		{Name: "Timestamp", Type: U32},
		{Name: "TransSeqNumber", Type: U8},
		{Name: "Data", Type: LongBytes},
	},
}

var AfReflectError = &Command{
	Subsystem: AF, Type: AREQ, ID: 0x83, Name: "AF.REFLECT_ERROR",
	Req: []Field{
		{Name: "Status", Type: U8},
		{Name: "Endpoint", Type: U8},
		{Name: "TransId", Type: U8},
		{Name: "DstAddrMode", Type: U8},
		{Name: "DstAddr", Type: NWKAddr},
	},
}

func init() {
	register(
		AfRegister, AfDataRequest, AfDataRequestExt, AfDataRequestSrcRtg,
		AfInterPanCtl, AfDataStore, AfDataRetrieve, AfApsfConfigSet,
		AfDataConfirm, AfIncomingMsg, AfIncomingMsgExt, AfReflectError,
	)
}
