package mediacontainer

// ServerInfo is the payload of a media server's root endpoint. It reports
// identity, version and the capability flags clients gate features on.
type ServerInfo struct {
	Base

	MachineIdentifier string            `json:"machineIdentifier" xml:"machineIdentifier,attr" plex:"required"`
	FriendlyName      *string           `json:"friendlyName,omitempty" xml:"friendlyName,attr"`
	Features          []ServerDirectory `json:"Directory" xml:"Directory" plex:"required"`

	AllowCameraUpload    Bool         `json:"allowCameraUpload" xml:"allowCameraUpload,attr" plex:"required"`
	AllowChannelAccess   Bool         `json:"allowChannelAccess" xml:"allowChannelAccess,attr" plex:"required"`
	AllowMediaDeletion   Bool         `json:"allowMediaDeletion" xml:"allowMediaDeletion,attr"`
	AllowSharing         Bool         `json:"allowSharing" xml:"allowSharing,attr" plex:"required"`
	AllowSync            Bool         `json:"allowSync" xml:"allowSync,attr" plex:"required"`
	AllowTuners          Bool         `json:"allowTuners" xml:"allowTuners,attr"`
	BackgroundProcessing Bool         `json:"backgroundProcessing" xml:"backgroundProcessing,attr" plex:"required"`
	Certificate          Bool         `json:"certificate" xml:"certificate,attr"`
	CompanionProxy       Bool         `json:"companionProxy" xml:"companionProxy,attr" plex:"required"`
	CountryCode          string       `json:"countryCode" xml:"countryCode,attr"`
	LiveTV               uint8        `json:"livetv" xml:"livetv,attr" plex:"required"`
	Diagnostics          List[string] `json:"diagnostics" xml:"diagnostics,attr"`

	MediaProviders     OptionalBool `json:"mediaProviders" xml:"mediaProviders,attr"`
	Multiuser          OptionalBool `json:"multiuser" xml:"multiuser,attr"`
	MyPlex             OptionalBool `json:"myPlex" xml:"myPlex,attr"`
	MyPlexSubscription OptionalBool `json:"myPlexSubscription" xml:"myPlexSubscription,attr"`
	MyPlexMappingState *string      `json:"myPlexMappingState,omitempty" xml:"myPlexMappingState,attr"`
	MyPlexSigninState  *string      `json:"myPlexSigninState,omitempty" xml:"myPlexSigninState,attr"`
	MyPlexUsername     *string      `json:"myPlexUsername,omitempty" xml:"myPlexUsername,attr"`
	OwnerFeatures      List[string] `json:"ownerFeatures" xml:"ownerFeatures,attr"`

	EventStream  Bool `json:"eventStream" xml:"eventStream,attr" plex:"required"`
	HubSearch    Bool `json:"hubSearch" xml:"hubSearch,attr" plex:"required"`
	ItemClusters Bool `json:"itemClusters" xml:"itemClusters,attr" plex:"required"`
	PhotoAutoTag Bool `json:"photoAutoTag" xml:"photoAutoTag,attr" plex:"required"`

	Platform                      string `json:"platform" xml:"platform,attr" plex:"required"`
	PlatformVersion               string `json:"platformVersion" xml:"platformVersion,attr" plex:"required"`
	PluginHost                    Bool   `json:"pluginHost" xml:"pluginHost,attr" plex:"required"`
	RequestParametersInCookie     Bool   `json:"requestParametersInCookie" xml:"requestParametersInCookie,attr" plex:"required"`
	ReadOnlyLibraries             uint16 `json:"readOnlyLibraries" xml:"readOnlyLibraries,attr" plex:"required"`
	StreamingBrainABRVersion      *uint8 `json:"streamingBrainABRVersion,omitempty" xml:"streamingBrainABRVersion,attr"`
	StreamingBrainVersion         uint8  `json:"streamingBrainVersion" xml:"streamingBrainVersion,attr" plex:"required"`
	Sync                          Bool   `json:"sync" xml:"sync,attr" plex:"required"`
	TranscoderActiveVideoSessions uint8  `json:"transcoderActiveVideoSessions" xml:"transcoderActiveVideoSessions,attr" plex:"required"`
	TranscoderAudio               Bool   `json:"transcoderAudio" xml:"transcoderAudio,attr" plex:"required"`
	TranscoderLyrics              Bool   `json:"transcoderLyrics" xml:"transcoderLyrics,attr" plex:"required"`
	TranscoderPhoto               Bool   `json:"transcoderPhoto" xml:"transcoderPhoto,attr" plex:"required"`
	TranscoderSubtitles           Bool   `json:"transcoderSubtitles" xml:"transcoderSubtitles,attr" plex:"required"`
	TranscoderVideo               Bool   `json:"transcoderVideo" xml:"transcoderVideo,attr" plex:"required"`
	Updater                       Bool   `json:"updater" xml:"updater,attr" plex:"required"`
	VoiceSearch                   Bool   `json:"voiceSearch" xml:"voiceSearch,attr" plex:"required"`

	TranscoderVideoBitrates    List[uint16] `json:"transcoderVideoBitrates" xml:"transcoderVideoBitrates,attr"`
	TranscoderVideoQualities   List[uint8]  `json:"transcoderVideoQualities" xml:"transcoderVideoQualities,attr"`
	TranscoderVideoResolutions List[uint16] `json:"transcoderVideoResolutions" xml:"transcoderVideoResolutions,attr"`

	UpdatedAt Timestamp `json:"updatedAt" xml:"updatedAt,attr"`
	Version   Version   `json:"version" xml:"version,attr" plex:"required"`

	MaxUploadBitrate              *uint16      `json:"maxUploadBitrate,omitempty" xml:"maxUploadBitrate,attr"`
	MaxUploadBitrateReason        *string      `json:"maxUploadBitrateReason,omitempty" xml:"maxUploadBitrateReason,attr"`
	MaxUploadBitrateReasonMessage *string      `json:"maxUploadBitrateReasonMessage,omitempty" xml:"maxUploadBitrateReasonMessage,attr"`
	PushNotifications             OptionalBool `json:"pushNotifications" xml:"pushNotifications,attr"`
}

// ServerDirectory is one top-level feature a server advertises, such as
// "library" or "playlists".
type ServerDirectory struct {
	Count *int   `json:"count,omitempty" xml:"count,attr"`
	Key   string `json:"key" xml:"key,attr" plex:"required"`
	Title string `json:"title" xml:"title,attr" plex:"required"`
}

// Directories returns a copy of the advertised features.
func (s ServerInfo) Directories() []ServerDirectory {
	out := make([]ServerDirectory, len(s.Features))
	copy(out, s.Features)
	return out
}

// SupportsMultiuser reports the multiuser flag; ok is false on servers that
// predate it.
func (s ServerInfo) SupportsMultiuser() (supported, ok bool) {
	return s.Multiuser.Get()
}

// Name prefers the configured friendly name and falls back to the machine id.
func (s ServerInfo) Name() string {
	if s.FriendlyName != nil && *s.FriendlyName != "" {
		return *s.FriendlyName
	}
	return s.MachineIdentifier
}
