package domain

// ProviderKind identifies which LLM vendor protocol a provider config speaks.
// The set is closed: adding a vendor means adding one adapter under internal/llm.
type ProviderKind string

const (
	ProviderOpenAI      ProviderKind = "openai"
	ProviderAzureOpenAI ProviderKind = "azure_openai"
	ProviderAnthropic   ProviderKind = "anthropic"
	ProviderGoogle      ProviderKind = "google"
)

// ValidProviderKinds maps every supported provider kind to its display name.
var ValidProviderKinds = map[ProviderKind]string{
	ProviderOpenAI:      "OpenAI",
	ProviderAzureOpenAI: "Azure OpenAI",
	ProviderAnthropic:   "Anthropic Claude",
	ProviderGoogle:      "Google Gemini",
}

// EngineKind identifies a web search engine backend.
type EngineKind string

const (
	EngineBing   EngineKind = "bing"
	EngineGoogle EngineKind = "google"
	EngineSerper EngineKind = "serper"
)

// ValidEngineKinds maps every supported search engine kind to its display name.
var ValidEngineKinds = map[EngineKind]string{
	EngineBing:   "Bing Search API",
	EngineGoogle: "Google Custom Search",
	EngineSerper: "Serper API",
}

// DocumentType enumerates the document categories the OCR pipeline accepts.
type DocumentType string

const (
	DocumentInvoice  DocumentType = "invoice"
	DocumentReceipt  DocumentType = "receipt"
	DocumentContract DocumentType = "contract"
	DocumentForm     DocumentType = "form"
	DocumentOther    DocumentType = "other"
)

// ValidDocumentTypes holds the closed set of accepted document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocumentInvoice:  true,
	DocumentReceipt:  true,
	DocumentContract: true,
	DocumentForm:     true,
	DocumentOther:    true,
}
