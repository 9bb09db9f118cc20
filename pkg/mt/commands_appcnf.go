package mt

// APP_CNF subsystem: BDB commissioning and trust-center policy commands,
// Z-Stack 3.x only.

// BDB commissioning modes for APP_CNF.BDB_START_COMMISSIONING.
const (
	BDBCommissioningInitialization uint8 = 0x00
	BDBCommissioningTouchlink      uint8 = 0x01
	BDBCommissioningNwkSteering    uint8 = 0x02
	BDBCommissioningNwkFormation   uint8 = 0x04
	BDBCommissioningFindingBinding uint8 = 0x08
)

var AppCnfSetAllowRejoinTcPolicy = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x03, Name: "APP_CNF.SET_ALLOWREJOIN_TC_POLICY",
	Req: []Field{{Name: "AllowRejoin", Type: Bool8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbAddInstallCode = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x04, Name: "APP_CNF.BDB_ADD_INSTALLCODE",
	Req: []Field{
		{Name: "InstallCodeFormat", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "InstallCode", Type: RestBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbStartCommissioning = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x05, Name: "APP_CNF.BDB_START_COMMISSIONING",
	Req:      []Field{{Name: "CommissioningMode", Type: U8}},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: AppCnfBdbCommissioningNotification,
}

var AppCnfBdbSetJoinUsesInstallCodeKey = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x06, Name: "APP_CNF.BDB_SET_JOINUSESINSTALLCODEKEY",
	Req: []Field{{Name: "BdbJoinUsesInstallCodeKey", Type: Bool8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbSetActiveDefaultCentralizedKey = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x07, Name: "APP_CNF.BDB_SET_ACTIVE_DEFAULT_CENTRALIZED_KEY",
	Req: []Field{
		{Name: "UseGlobal", Type: Bool8},
		{Name: "InstallCode", Type: FixedBytes, Size: 18},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbSetChannel = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x08, Name: "APP_CNF.BDB_SET_CHANNEL",
	Req: []Field{
		{Name: "IsPrimary", Type: Bool8},
		{Name: "Channel", Type: ChannelMask},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbSetTcRequireKeyExchange = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0x09, Name: "APP_CNF.BDB_SET_TC_REQUIRE_KEY_EXCHANGE",
	Req: []Field{{Name: "BdbTrustCenterRequireKeyExchange", Type: Bool8}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfSetNwkFrameCounter = &Command{
	Subsystem: APPConfig, Type: SREQ, ID: 0xFF, Name: "APP_CNF.SET_NWK_FRAME_COUNTER",
	Req: []Field{{Name: "FrameCounterValue", Type: U32}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var AppCnfBdbCommissioningNotification = &Command{
	Subsystem: APPConfig, Type: AREQ, ID: 0x80, Name: "APP_CNF.BDB_COMMISSIONING_NOTIFICATION",
	Req: []Field{
		{Name: "Status", Type: U8},
		{Name: "Mode", Type: U8},
		{Name: "RemainingModes", Type: U8},
	},
}

func init() {
	register(
		AppCnfSetAllowRejoinTcPolicy, AppCnfBdbAddInstallCode,
		AppCnfBdbStartCommissioning, AppCnfBdbSetJoinUsesInstallCodeKey,
		AppCnfBdbSetActiveDefaultCentralizedKey, AppCnfBdbSetChannel,
		AppCnfBdbSetTcRequireKeyExchange, AppCnfSetNwkFrameCounter,
		AppCnfBdbCommissioningNotification,
	)
}
