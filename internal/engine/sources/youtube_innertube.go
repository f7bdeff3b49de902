package sources

import (
	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// YouTube Innertube API: request descriptor and headers for browse continuations.
// The descriptor mirrors what a desktop Firefox WEB client sends; only the
// locator and the continuation token vary between requests.

const (
	ytClientName          = "WEB"
	ytClientNameID        = "1"
	ytClientVersion       = "2.20220719.01.00"
	ytVisitorData         = "Cgs2MnFMTTZTLTRsRSjFwt-WBg%3D%3D"
	ytClickTrackingParams = "CCMQ7zsYACITCLjr34iph_kCFRp3mwod4dEKSw=="
)

type continuationReq struct {
	Context      continuationCtx `json:"context"`
	Continuation string          `json:"continuation"`
}

type continuationCtx struct {
	Client        ytWebClientCtx  `json:"client"`
	User          ytWebUser       `json:"user"`
	Request       ytWebReqCtx     `json:"request"`
	ClickTracking ytClickTracking `json:"clickTracking"`
	AdSignalsInfo ytAdSignalsInfo `json:"adSignalsInfo"`
}

type ytWebClientCtx struct {
	Hl                 string           `json:"hl"`
	Gl                 string           `json:"gl"`
	DeviceMake         string           `json:"deviceMake"`
	DeviceModel        string           `json:"deviceModel"`
	VisitorData        string           `json:"visitorData"`
	UserAgent          string           `json:"userAgent"`
	ClientName         string           `json:"clientName"`
	ClientVersion      string           `json:"clientVersion"`
	OsName             string           `json:"osName"`
	OsVersion          string           `json:"osVersion"`
	OriginalURL        string           `json:"originalUrl"`
	Platform           string           `json:"platform"`
	ClientFormFactor   string           `json:"clientFormFactor"`
	ConfigInfo         struct{}         `json:"configInfo"`
	BrowserName        string           `json:"browserName"`
	BrowserVersion     string           `json:"browserVersion"`
	ScreenWidthPoints  int              `json:"screenWidthPoints"`
	ScreenHeightPoints int              `json:"screenHeightPoints"`
	ScreenPixelDensity int              `json:"screenPixelDensity"`
	ScreenDensityFloat float64          `json:"screenDensityFloat"`
	UtcOffsetMinutes   int              `json:"utcOffsetMinutes"`
	UserInterfaceTheme string           `json:"userInterfaceTheme"`
	MainAppWebInfo     ytMainAppWebInfo `json:"mainAppWebInfo"`
	TimeZone           string           `json:"timeZone"`
}

type ytMainAppWebInfo struct {
	GraftURL                  string `json:"graftUrl"`
	WebDisplayMode            string `json:"webDisplayMode"`
	IsWebNativeShareAvailable bool   `json:"isWebNativeShareAvailable"`
}

type ytWebUser struct {
	LockedSafetyMode bool `json:"lockedSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl                  bool     `json:"useSsl"`
	InternalExperimentFlags []string `json:"internalExperimentFlags"`
	ConsistencyTokenJars    []string `json:"consistencyTokenJars"`
}

type ytClickTracking struct {
	ClickTrackingParams string `json:"clickTrackingParams"`
}

type ytAdSignalsInfo struct {
	Params []string `json:"params"`
}

// newContinuationReq builds the browse continuation body for one page.
func newContinuationReq(locator, token string) continuationReq {
	return continuationReq{
		Context: continuationCtx{
			Client: ytWebClientCtx{
				Hl:                 "en",
				Gl:                 "RU",
				VisitorData:        ytVisitorData,
				UserAgent:          engine.UserAgentFirefox + ",gzip(gfe)",
				ClientName:         ytClientName,
				ClientVersion:      ytClientVersion,
				OsName:             "X11",
				OriginalURL:        locator,
				Platform:           "DESKTOP",
				ClientFormFactor:   "UNKNOWN_FORM_FACTOR",
				BrowserName:        "Firefox",
				BrowserVersion:     "101.0",
				ScreenWidthPoints:  1676,
				ScreenHeightPoints: 191,
				ScreenPixelDensity: 2,
				ScreenDensityFloat: 1.5,
				UtcOffsetMinutes:   180,
				UserInterfaceTheme: "USER_INTERFACE_THEME_LIGHT",
				MainAppWebInfo: ytMainAppWebInfo{
					GraftURL:       locator,
					WebDisplayMode: "WEB_DISPLAY_MODE_BROWSER",
				},
				TimeZone: "Europe/Moscow",
			},
			Request: ytWebReqCtx{
				UseSsl:                  true,
				InternalExperimentFlags: []string{},
				ConsistencyTokenJars:    []string{},
			},
			ClickTracking: ytClickTracking{ClickTrackingParams: ytClickTrackingParams},
			AdSignalsInfo: ytAdSignalsInfo{Params: []string{}},
		},
		Continuation: token,
	}
}

// innertubeHeaders returns the WEB client headers sent with continuation requests.
func innertubeHeaders(origin, referer string) map[string]string {
	return map[string]string{
		"Accept":                   "*/*",
		"User-Agent":               engine.UserAgentFirefox,
		"X-Youtube-Client-Name":    ytClientNameID,
		"X-Youtube-Client-Version": ytClientVersion,
		"Origin":                   origin,
		"Referer":                  referer,
	}
}
