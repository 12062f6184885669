package service

type envelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type tickersResponse struct {
	envelope
	Data []struct {
		InstID string `json:"instId"`
		BidPx  string `json:"bidPx"`
		AskPx  string `json:"askPx"`
		Last   string `json:"last"`
		Ts     string `json:"ts"`
	} `json:"data"`
}

type statsResponse struct {
	envelope
	Data []struct {
		InstID    string `json:"instId"`
		Last      string `json:"last"`
		Open24h   string `json:"open24h"`
		High24h   string `json:"high24h"`
		Low24h    string `json:"low24h"`
		Vol24h    string `json:"vol24h"`
		VolCcy24h string `json:"volCcy24h"`
	} `json:"data"`
}

type candlesResponse struct {
	envelope
	// [ts, o, h, l, c, vol, ...]
	Data [][]string `json:"data"`
}

type balanceResponse struct {
	envelope
	Data []struct {
		Details []struct {
			Ccy      string `json:"ccy"`
			AvailBal string `json:"availBal"`
			AvailEq  string `json:"availEq"`
		} `json:"details"`
	} `json:"data"`
}

type positionsResponse struct {
	envelope
	Data []struct {
		InstID  string `json:"instId"`
		Pos     string `json:"pos"`
		PosSide string `json:"posSide"`
		AvgPx   string `json:"avgPx"`
		Lever   string `json:"lever"`
		MgnMode string `json:"mgnMode"`
		Margin  string `json:"margin"`
		LiqPx   string `json:"liqPx"`
		Upl     string `json:"upl"`
		UTime   string `json:"uTime"`
	} `json:"data"`
}

type orderAckResponse struct {
	envelope
	Data []struct {
		OrdID   string `json:"ordId"`
		ClOrdID string `json:"clOrdId"`
		SCode   string `json:"sCode"`
		SMsg    string `json:"sMsg"`
	} `json:"data"`
}

type orderDetail struct {
	OrdID     string `json:"ordId"`
	ClOrdID   string `json:"clOrdId"`
	InstID    string `json:"instId"`
	Side      string `json:"side"`
	OrdType   string `json:"ordType"`
	Sz        string `json:"sz"`
	AccFillSz string `json:"accFillSz"`
	Px        string `json:"px"`
	AvgPx     string `json:"avgPx"`
	PosSide   string `json:"posSide"`
	State     string `json:"state"`
	CTime     string `json:"cTime"`
	UTime     string `json:"uTime"`
}

type ordersResponse struct {
	envelope
	Data []orderDetail `json:"data"`
}

type ackResponse struct {
	envelope
	Data []struct {
		SCode string `json:"sCode"`
		SMsg  string `json:"sMsg"`
	} `json:"data"`
}
