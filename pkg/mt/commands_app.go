package mt

// APP subsystem plus the MAC commands the driver touches. MAC is almost
// entirely internal to the coprocessor; only the reset shortcut is useful
// from the host side.

var AppMsg = &Command{
	Subsystem: APP, Type: SREQ, ID: 0x00, Name: "APP.MSG",
	Req: []Field{
		{Name: "AppEndpoint", Type: U8},
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DstEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "Message", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppUserTest = &Command{
	Subsystem: APP, Type: SREQ, ID: 0x01, Name: "APP.USER_TEST",
	Req: []Field{
		{Name: "SrcEndpoint", Type: U8},
		{Name: "CommandId", Type: U16},
		{Name: "Parameter1", Type: U16},
		{Name: "Parameter2", Type: U16},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var MacResetReq = &Command{
	Subsystem: MAC, Type: SREQ, ID: 0x01, Name: "MAC.RESET_REQ",
	Req: []Field{{Name: "SetDefault", Type: Bool8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

func init() {
	register(AppMsg, AppUserTest, MacResetReq)
}
