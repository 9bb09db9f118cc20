package mt

// ZDO subsystem: network management requests, their over-the-air responses
// (delivered as AREQ indications), and unsolicited device indications.

var ZdoNwkAddrReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x00, Name: "ZDO.NWK_ADDR_REQ",
	Req: []Field{
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "ReqType", Type: U8},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoNwkAddrRsp,
}

var ZdoIeeeAddrReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x01, Name: "ZDO.IEEE_ADDR_REQ",
	Req: []Field{
		{Name: "ShortAddr", Type: NWKAddr},
		{Name: "ReqType", Type: U8},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoIeeeAddrRsp,
}

var ZdoNodeDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x02, Name: "ZDO.NODE_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoNodeDescRsp,
}

var ZdoPowerDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x03, Name: "ZDO.POWER_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoPowerDescRsp,
}

var ZdoSimpleDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x04, Name: "ZDO.SIMPLE_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
		{Name: "Endpoint", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoSimpleDescRsp,
}

var ZdoActiveEpReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x05, Name: "ZDO.ACTIVE_EP_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoActiveEpRsp,
}

var ZdoMatchDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x06, Name: "ZDO.MATCH_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
		{Name: "ProfileId", Type: U16},
		{Name: "InClusters", Type: StructList, Struct: clusterList},
		{Name: "OutClusters", Type: StructList, Struct: clusterList},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMatchDescRsp,
}

var ZdoComplexDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x07, Name: "ZDO.COMPLEX_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoUserDescReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x08, Name: "ZDO.USER_DESC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoEndDeviceAnnce = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x0A, Name: "ZDO.END_DEVICE_ANNCE",
	Req: []Field{
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "Capabilities", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoUserDescSet = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x0B, Name: "ZDO.USER_DESC_SET",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "NwkAddrOfInterest", Type: NWKAddr},
		{Name: "UserDescriptor", Type: ShortBytes},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoServerDiscReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x0C, Name: "ZDO.SERVER_DISC_REQ",
	Req: []Field{{Name: "ServerMask", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoEndDeviceBindReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x20, Name: "ZDO.END_DEVICE_BIND_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "LocalCoordinator", Type: NWKAddr},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "Endpoint", Type: U8},
		{Name: "ProfileId", Type: U16},
		{Name: "InClusters", Type: StructList, Struct: clusterList},
		{Name: "OutClusters", Type: StructList, Struct: clusterList},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoBindReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x21, Name: "ZDO.BIND_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "SrcAddress", Type: IEEE},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "DstAddrMode", Type: U8},
		{Name: "DstAddress", Type: IEEE},
		{Name: "DstEndpoint", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoBindRsp,
}

var ZdoUnbindReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x22, Name: "ZDO.UNBIND_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "SrcAddress", Type: IEEE},
		{Name: "SrcEndpoint", Type: U8},
		{Name: "ClusterId", Type: U16},
		{Name: "DstAddrMode", Type: U8},
		{Name: "DstAddress", Type: IEEE},
		{Name: "DstEndpoint", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoUnbindRsp,
}

var ZdoSetLinkKey = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x23, Name: "ZDO.SET_LINK_KEY",
	Req: []Field{
		{Name: "ShortAddr", Type: NWKAddr},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "LinkKeyData", Type: FixedBytes, Size: 16},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoRemoveLinkKey = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x24, Name: "ZDO.REMOVE_LINK_KEY",
	Req: []Field{{Name: "IEEEAddr", Type: IEEE}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoGetLinkKey = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x25, Name: "ZDO.GET_LINK_KEY",
	Req: []Field{{Name: "IEEEAddr", Type: IEEE}},
	Rsp: []Field{
		{Name: "Status", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "LinkKeyData", Type: FixedBytes, Size: 16},
	},
}

var ZdoNwkDiscoveryReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x26, Name: "ZDO.NWK_DISCOVERY_REQ",
	Req: []Field{
		{Name: "ScanChannels", Type: ChannelMask},
		{Name: "ScanDuration", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoJoinReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x27, Name: "ZDO.JOIN_REQ",
	Req: []Field{
		{Name: "LogicalChannel", Type: U8},
		{Name: "PanId", Type: U16},
		{Name: "ExtendedPanId", Type: IEEE},
		{Name: "ChosenParent", Type: NWKAddr},
		{Name: "ParentDepth", Type: U8},
		{Name: "StackProfile", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoMgmtNwkDiscReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x30, Name: "ZDO.MGMT_NWK_DISC_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "ScanChannels", Type: ChannelMask},
		{Name: "ScanDuration", Type: U8},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtNwkDiscRsp,
}

var ZdoMgmtLqiReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x31, Name: "ZDO.MGMT_LQI_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtLqiRsp,
}

var ZdoMgmtRtgReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x32, Name: "ZDO.MGMT_RTG_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtRtgRsp,
}

var ZdoMgmtBindReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x33, Name: "ZDO.MGMT_BIND_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "StartIndex", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtBindRsp,
}

var ZdoMgmtLeaveReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x34, Name: "ZDO.MGMT_LEAVE_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DeviceAddr", Type: IEEE},
		{Name: "RemoveChildrenRejoin", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtLeaveRsp,
}

var ZdoMgmtDirectJoinReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x35, Name: "ZDO.MGMT_DIRECT_JOIN_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DeviceAddr", Type: IEEE},
		{Name: "Capabilities", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoMgmtPermitJoinReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x36, Name: "ZDO.MGMT_PERMIT_JOIN_REQ",
	Req: []Field{
		{Name: "AddrMode", Type: U8},
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "Duration", Type: U8},
		{Name: "TCSignificance", Type: U8},
	},
	Rsp:      []Field{{Name: "Status", Type: U8}},
	Callback: ZdoMgmtPermitJoinRsp,
}

var ZdoMgmtNwkUpdateReq = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x37, Name: "ZDO.MGMT_NWK_UPDATE_REQ",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "DstAddrMode", Type: U8},
		{Name: "ChannelMask", Type: ChannelMask},
		{Name: "ScanDuration", Type: U8},
		{Name: "ScanCount", Type: U8},
		{Name: "NwkManagerAddr", Type: NWKAddr},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoMsgCbRegister = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x3E, Name: "ZDO.MSG_CB_REGISTER",
	Req: []Field{{Name: "ClusterId", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoMsgCbRemove = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x3F, Name: "ZDO.MSG_CB_REMOVE",
	Req: []Field{{Name: "ClusterId", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoStartupFromApp = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x40, Name: "ZDO.STARTUP_FROM_APP",
	Req: []Field{{Name: "StartDelay", Type: U16}},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoExtRouteDisc = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x45, Name: "ZDO.EXT_ROUTE_DISC",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "Options", Type: U8},
		{Name: "Radius", Type: U8},
	},
	Rsp: []Field{{Name: "Status", Type: U8}},
}

var ZdoExtNwkInfo = &Command{
	Subsystem: ZDO, Type: SREQ, ID: 0x50, Name: "ZDO.EXT_NWK_INFO",
	Rsp: []Field{
		{Name: "ShortAddr", Type: NWKAddr},
		{Name: "DevState", Type: U8},
		{Name: "PanId", Type: U16},
		{Name: "ParentAddr", Type: NWKAddr},
		{Name: "ExtendedPanId", Type: IEEE},
		{Name: "ParentExtAddr", Type: IEEE},
		{Name: "Channel", Type: U8},
	},
}

// Over-the-air responses (AREQ indications).

var assocDevList = []Field{{Name: "Addr", Type: NWKAddr}}

var ZdoNwkAddrRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x80, Name: "ZDO.NWK_ADDR_RSP",
	Req: []Field{
		{Name: "Status", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "StartIndex", Type: U8},
		{Name: "AssocDevList", Type: StructList, Struct: assocDevList},
	},
}

var ZdoIeeeAddrRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x81, Name: "ZDO.IEEE_ADDR_RSP",
	Req: []Field{
		{Name: "Status", Type: U8},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "StartIndex", Type: U8},
		{Name: "AssocDevList", Type: StructList, Struct: assocDevList},
	},
}

var ZdoNodeDescRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x82, Name: "ZDO.NODE_DESC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "LogicalTypeFlags", Type: U8},
		{Name: "APSFlags", Type: U8},
		{Name: "MACCapabilities", Type: U8},
		{Name: "ManufacturerCode", Type: U16},
		{Name: "MaxBufferSize", Type: U8},
		{Name: "MaxInTransferSize", Type: U16},
		{Name: "ServerMask", Type: U16},
		{Name: "MaxOutTransferSize", Type: U16},
		{Name: "DescriptorCapabilities", Type: U8},
	},
}

var ZdoPowerDescRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x83, Name: "ZDO.POWER_DESC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "CurrentPowerMode", Type: U8},
		{Name: "CurrentPowerSource", Type: U8},
	},
}

var ZdoSimpleDescRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x84, Name: "ZDO.SIMPLE_DESC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "Length", Type: U8},
		{Name: "Endpoint", Type: U8},
		{Name: "ProfileId", Type: U16},
		{Name: "DeviceId", Type: U16},
		{Name: "DeviceVersion", Type: U8},
		{Name: "InClusters", Type: StructList, Struct: clusterList},
		{Name: "OutClusters", Type: StructList, Struct: clusterList},
	},
}

var ZdoActiveEpRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x85, Name: "ZDO.ACTIVE_EP_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "ActiveEps", Type: ShortBytes},
	},
}

var ZdoMatchDescRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x86, Name: "ZDO.MATCH_DESC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "MatchList", Type: ShortBytes},
	},
}

var ZdoUserDescConf = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x89, Name: "ZDO.USER_DESC_CONF",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NwkAddr", Type: NWKAddr},
	},
}

var ZdoServerDiscRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0x8A, Name: "ZDO.SERVER_DISC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "ServerMask", Type: U16},
	},
}

var ZdoEndDeviceBindRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xA0, Name: "ZDO.END_DEVICE_BIND_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoBindRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xA1, Name: "ZDO.BIND_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoUnbindRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xA2, Name: "ZDO.UNBIND_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoMgmtNwkDiscRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB0, Name: "ZDO.MGMT_NWK_DISC_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NetworkCount", Type: U8},
		{Name: "StartIndex", Type: U8},
		{Name: "Networks", Type: StructList, Struct: []Field{
			{Name: "ExtendedPanId", Type: IEEE},
			{Name: "LogicalChannel", Type: U8},
			{Name: "StackProfile", Type: U8},
			{Name: "BeaconOrder", Type: U8},
			{Name: "PermitJoining", Type: Bool8},
		}},
	},
}

var ZdoMgmtLqiRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB1, Name: "ZDO.MGMT_LQI_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "NeighborTableEntries", Type: U8},
		{Name: "StartIndex", Type: U8},
		{Name: "Neighbors", Type: StructList, Struct: []Field{
			{Name: "ExtendedPanId", Type: IEEE},
			{Name: "ExtAddr", Type: IEEE},
			{Name: "NwkAddr", Type: NWKAddr},
			// deviceType[1:0] | rxOnWhenIdle[3:2] | relationship[6:4]
			{Name: "PackedFlags", Type: U8},
			{Name: "PermitJoining", Type: U8},
			{Name: "Depth", Type: U8},
			{Name: "LQI", Type: U8},
		}},
	},
}

var ZdoMgmtRtgRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB2, Name: "ZDO.MGMT_RTG_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "RoutingTableEntries", Type: U8},
		{Name: "StartIndex", Type: U8},
		{Name: "Routes", Type: StructList, Struct: []Field{
			{Name: "DstAddr", Type: NWKAddr},
			{Name: "RouteStatus", Type: U8},
			{Name: "NextHop", Type: NWKAddr},
		}},
	},
}

var ZdoMgmtBindRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB3, Name: "ZDO.MGMT_BIND_RSP",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "Status", Type: U8},
		{Name: "BindingTableEntries", Type: U8},
		{Name: "StartIndex", Type: U8},
		{Name: "BindTable", Type: StructList, Struct: []Field{
			{Name: "SrcAddr", Type: IEEE},
			{Name: "SrcEndpoint", Type: U8},
			{Name: "ClusterId", Type: U16},
			{Name: "DstAddrMode", Type: U8},
			{Name: "DstAddr", Type: IEEE},
			{Name: "DstEndpoint", Type: U8},
		}},
	},
}

var ZdoMgmtLeaveRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB4, Name: "ZDO.MGMT_LEAVE_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoMgmtDirectJoinRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB5, Name: "ZDO.MGMT_DIRECT_JOIN_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoMgmtPermitJoinRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xB6, Name: "ZDO.MGMT_PERMIT_JOIN_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

// Unsolicited indications.

var ZdoStateChangeInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC0, Name: "ZDO.STATE_CHANGE_IND",
	Req: []Field{{Name: "State", Type: U8}},
}

var ZdoEndDeviceAnnceInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC1, Name: "ZDO.END_DEVICE_ANNCE_IND",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "IEEEAddr", Type: IEEE},
		{Name: "Capabilities", Type: U8},
	},
}

var ZdoMatchDescRspSent = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC2, Name: "ZDO.MATCH_DESC_RSP_SENT",
	Req: []Field{
		{Name: "NwkAddr", Type: NWKAddr},
		{Name: "InClusters", Type: StructList, Struct: clusterList},
		{Name: "OutClusters", Type: StructList, Struct: clusterList},
	},
}

var ZdoStatusErrorRsp = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC3, Name: "ZDO.STATUS_ERROR_RSP",
	Req: []Field{{Name: "SrcAddr", Type: NWKAddr}, {Name: "Status", Type: U8}},
}

var ZdoSrcRtgInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC4, Name: "ZDO.SRC_RTG_IND",
	Req: []Field{
		{Name: "DstAddr", Type: NWKAddr},
		{Name: "RelayList", Type: StructList, Struct: []Field{{Name: "Addr", Type: NWKAddr}}},
	},
}

var ZdoLeaveInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xC9, Name: "ZDO.LEAVE_IND",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "ExtAddr", Type: IEEE},
		{Name: "Request", Type: Bool8},
		{Name: "Remove", Type: Bool8},
		{Name: "Rejoin", Type: Bool8},
	},
}

var ZdoTcDevInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xCA, Name: "ZDO.TC_DEV_IND",
	Req: []Field{
		{Name: "SrcNwkAddr", Type: NWKAddr},
		{Name: "ExtAddr", Type: IEEE},
		{Name: "ParentNwkAddr", Type: NWKAddr},
	},
}

var ZdoPermitJoinInd = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xCB, Name: "ZDO.PERMIT_JOIN_IND",
	Req: []Field{{Name: "Duration", Type: U8}},
}

var ZdoMsgCbIncoming = &Command{
	Subsystem: ZDO, Type: AREQ, ID: 0xFF, Name: "ZDO.MSG_CB_INCOMING",
	Req: []Field{
		{Name: "SrcAddr", Type: NWKAddr},
		{Name: "WasBroadcast", Type: Bool8},
		{Name: "ClusterId", Type: U16},
		{Name: "SecurityUse", Type: Bool8},
		{Name: "SeqNum", Type: U8},
		{Name: "MacDstAddr", Type: NWKAddr},
		{Name: "Data", Type: RestBytes},
	},
}

func init() {
	register(
		ZdoNwkAddrReq, ZdoIeeeAddrReq, ZdoNodeDescReq, ZdoPowerDescReq,
		ZdoSimpleDescReq, ZdoActiveEpReq, ZdoMatchDescReq, ZdoComplexDescReq,
		ZdoUserDescReq, ZdoEndDeviceAnnce, ZdoUserDescSet, ZdoServerDiscReq,
		ZdoEndDeviceBindReq, ZdoBindReq, ZdoUnbindReq,
		ZdoSetLinkKey, ZdoRemoveLinkKey, ZdoGetLinkKey,
		ZdoNwkDiscoveryReq, ZdoJoinReq,
		ZdoMgmtNwkDiscReq, ZdoMgmtLqiReq, ZdoMgmtRtgReq, ZdoMgmtBindReq,
		ZdoMgmtLeaveReq, ZdoMgmtDirectJoinReq, ZdoMgmtPermitJoinReq,
		ZdoMgmtNwkUpdateReq, ZdoMsgCbRegister, ZdoMsgCbRemove,
		ZdoStartupFromApp, ZdoExtRouteDisc, ZdoExtNwkInfo,
		ZdoNwkAddrRsp, ZdoIeeeAddrRsp, ZdoNodeDescRsp, ZdoPowerDescRsp,
		ZdoSimpleDescRsp, ZdoActiveEpRsp, ZdoMatchDescRsp, ZdoUserDescConf,
		ZdoServerDiscRsp, ZdoEndDeviceBindRsp, ZdoBindRsp, ZdoUnbindRsp,
		ZdoMgmtNwkDiscRsp, ZdoMgmtLqiRsp, ZdoMgmtRtgRsp, ZdoMgmtBindRsp,
		ZdoMgmtLeaveRsp, ZdoMgmtDirectJoinRsp, ZdoMgmtPermitJoinRsp,
		ZdoStateChangeInd, ZdoEndDeviceAnnceInd, ZdoMatchDescRspSent,
		ZdoStatusErrorRsp, ZdoSrcRtgInd, ZdoLeaveInd, ZdoTcDevInd,
		ZdoPermitJoinInd, ZdoMsgCbIncoming,
	)
}
