package mt

// SAPI subsystem: the simple API used by Z-Stack 1.2 firmware for network
// start-up and configuration reads/writes.

var SapiZbStartRequest = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x00, Name: "SAPI.ZB_START_REQUEST",
	Callback: SapiZbStartConfirm,
}

var SapiZbBindDevice = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x01, Name: "SAPI.ZB_BIND_DEVICE",
	Req: []Field{
		{Name: "Create", Type: Bool8},
		{Name: "CommandId", Type: U16},
		{Name: "Destination", Type: IEEE},
	},
	Callback: SapiZbBindConfirm,
}

var SapiZbAllowBind = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x02, Name: "SAPI.ZB_ALLOW_BIND",
	Req: []Field{{Name: "Timeout", Type: U8}},
}

var SapiZbSendDataRequest = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x03, Name: "SAPI.ZB_SEND_DATA_REQUEST",
	Req: []Field{
		{Name: "Destination", Type: NWKAddr},
		{Name: "CommandId", Type: U16},
		{Name: "Handle", Type: U8},
		{Name: "TxOptions", Type: U8},
		{Name: "Radius", Type: U8},
		{Name: "Data", Type: ShortBytes},
	},
	Callback: SapiZbSendDataConfirm,
}

var SapiZbReadConfiguration = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x04, Name: "SAPI.ZB_READ_CONFIGURATION",
	Req: []Field{{Name: "ConfigId", Type: U8}},
	Rsp: []Field{
		{Name: "Status", Type: U8},
		{Name: "ConfigId", Type: U8},
		{Name: "Value", Type: ShortBytes},
	},
}

var SapiZbWriteConfiguration = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x05, Name: "SAPI.ZB_WRITE_CONFIGURATION",
	Req: []Field{
		{Name: "ConfigId", Type: U8},
		{Name: "Value", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SapiZbGetDeviceInfo = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x06, Name: "SAPI.ZB_GET_DEVICE_INFO",
	Req: []Field{{Name: "Param", Type: U8}},
	Rsp: []Field{
		{Name: "Param", Type: U8},
		{Name: "Value", Type: FixedBytes, Size: 8},
	},
}

var SapiZbFindDeviceRequest = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x07, Name: "SAPI.ZB_FIND_DEVICE_REQUEST",
	Req:      []Field{{Name: "SearchKey", Type: IEEE}},
	Callback: SapiZbFindDeviceConfirm,
}

var SapiZbPermitJoiningRequest = &Command{
	Subsystem: SAPI, Type: SREQ, ID: 0x08, Name: "SAPI.ZB_PERMIT_JOINING_REQUEST",
	Req: []Field{
		{Name: "Destination", Type: NWKAddr},
		{Name: "Timeout", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var SapiZbSystemReset = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x09, Name: "SAPI.ZB_SYSTEM_RESET",
}

var SapiZbStartConfirm = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x80, Name: "SAPI.ZB_START_CONFIRM",
	Req: []Field{{Name: "Status", Type: U8}},
}

var SapiZbBindConfirm = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x81, Name: "SAPI.ZB_BIND_CONFIRM",
	Req: []Field{
		{Name: "CommandId", Type: U16},
		{Name: "Status", Type: U8},
	},
}

var SapiZbAllowBindConfirm = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x82, Name: "SAPI.ZB_ALLOW_BIND_CONFIRM",
	Req: []Field{{Name: "Source", Type: NWKAddr}},
}

var SapiZbSendDataConfirm = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x83, Name: "SAPI.ZB_SEND_DATA_CONFIRM",
	Req: []Field{
		{Name: "Handle", Type: U8},
		{Name: "Status", Type: U8},
	},
}

var SapiZbFindDeviceConfirm = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x85, Name: "SAPI.ZB_FIND_DEVICE_CONFIRM",
	Req: []Field{
		{Name: "SearchType", Type: U8},
		{Name: "Result", Type: NWKAddr},
		{Name: "SearchKey", Type: IEEE},
	},
}

var SapiZbReceiveDataIndication = &Command{
	Subsystem: SAPI, Type: AREQ, ID: 0x87, Name: "SAPI.ZB_RECEIVE_DATA_INDICATION",
	Req: []Field{
		{Name: "Source", Type: NWKAddr},
		{Name: "CommandId", Type: U16},
		{Name: "Data", Type: LongBytes},
	},
}

func init() {
	register(
		SapiZbStartRequest, SapiZbBindDevice, SapiZbAllowBind,
		SapiZbSendDataRequest, SapiZbReadConfiguration,
		SapiZbWriteConfiguration, SapiZbGetDeviceInfo,
		SapiZbFindDeviceRequest, SapiZbPermitJoiningRequest,
		SapiZbSystemReset,
		SapiZbStartConfirm, SapiZbBindConfirm, SapiZbAllowBindConfirm,
		SapiZbSendDataConfirm, SapiZbFindDeviceConfirm,
		SapiZbReceiveDataIndication,
	)
}
