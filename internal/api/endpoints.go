package api

import (
	"fmt"
	"strings"
)

// Environment selects the provider deployment a client talks to.
type Environment int

const (
	// Production is the live environment.
	Production Environment = iota
	// Sandbox is the provider's test environment.
	Sandbox
)

func (e Environment) String() string {
	if e == Sandbox {
		return "sandbox"
	}
	return "production"
}

// ParseEnvironment maps "sandbox" to Sandbox and every other value to
// Production. Unrecognised values therefore target the live API; use
// ParseEnvironmentStrict where that is not acceptable.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), "sandbox") {
		return Sandbox
	}
	return Production
}

// ParseEnvironmentStrict accepts sandbox, production or live and rejects
// anything else.
func ParseEnvironmentStrict(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sandbox":
		return Sandbox, nil
	case "production", "live":
		return Production, nil
	default:
		return Production, &ValidationError{
			Field:   "environment",
			Message: fmt.Sprintf("unknown environment %q (use sandbox or production)", s),
		}
	}
}

// Service is a logical provider service with its own host family and path.
type Service int

const (
	ServiceUser Service = iota
	ServiceMessaging
	ServiceSubscription
	ServiceSubscriptionCreate
	ServiceSubscriptionDelete
	ServiceAirtime
	ServiceVoiceCall
	ServiceVoiceQueueStatus
	ServiceVoiceMediaUpload
	ServiceCheckout
	ServiceB2C
	ServiceB2B
)

type hostFamily int

const (
	hostAPI hostFamily = iota
	hostVoice
	hostPayments
)

const providerDomain = "africastalking.com"

var servicePaths = map[Service]struct {
	host hostFamily
	path string
}{
	ServiceUser:               {hostAPI, "/version1/user"},
	ServiceMessaging:          {hostAPI, "/version1/messaging"},
	ServiceSubscription:       {hostAPI, "/version1/subscription"},
	ServiceSubscriptionCreate: {hostAPI, "/version1/subscription/create"},
	ServiceSubscriptionDelete: {hostAPI, "/version1/subscription/delete"},
	ServiceAirtime:            {hostAPI, "/version1/airtime/send"},
	ServiceVoiceCall:          {hostVoice, "/call"},
	ServiceVoiceQueueStatus:   {hostVoice, "/queueStatus"},
	ServiceVoiceMediaUpload:   {hostVoice, "/mediaUpload"},
	ServiceCheckout:           {hostPayments, "/mobile/checkout/request"},
	ServiceB2C:                {hostPayments, "/mobile/b2c/request"},
	ServiceB2B:                {hostPayments, "/mobile/b2b/request"},
}

func host(family hostFamily, env Environment) string {
	prefix := "api"
	switch family {
	case hostVoice:
		prefix = "voice"
	case hostPayments:
		prefix = "payments"
	}
	if env == Sandbox {
		return fmt.Sprintf("https://%s.sandbox.%s", prefix, providerDomain)
	}
	return fmt.Sprintf("https://%s.%s", prefix, providerDomain)
}

// Resolve returns the fully qualified URL of a service in an environment.
func Resolve(service Service, env Environment) string {
	sp, ok := servicePaths[service]
	if !ok {
		return ""
	}
	return host(sp.host, env) + sp.path
}

// Endpoints is the resolved URL table of one environment.
type Endpoints struct {
	UserData           string `json:"user_data"`
	Messaging          string `json:"messaging"`
	Subscription       string `json:"subscription"`
	SubscriptionCreate string `json:"subscription_create"`
	SubscriptionDelete string `json:"subscription_delete"`
	Airtime            string `json:"airtime"`
	VoiceCall          string `json:"voice_call"`
	VoiceQueueStatus   string `json:"voice_queue_status"`
	VoiceMediaUpload   string `json:"voice_media_upload"`
	Checkout           string `json:"checkout"`
	B2C                string `json:"b2c"`
	B2B                string `json:"b2b"`
}

// ResolveEndpoints resolves every service URL for env.
func ResolveEndpoints(env Environment) Endpoints {
	return Endpoints{
		UserData:           Resolve(ServiceUser, env),
		Messaging:          Resolve(ServiceMessaging, env),
		Subscription:       Resolve(ServiceSubscription, env),
		SubscriptionCreate: Resolve(ServiceSubscriptionCreate, env),
		SubscriptionDelete: Resolve(ServiceSubscriptionDelete, env),
		Airtime:            Resolve(ServiceAirtime, env),
		VoiceCall:          Resolve(ServiceVoiceCall, env),
		VoiceQueueStatus:   Resolve(ServiceVoiceQueueStatus, env),
		VoiceMediaUpload:   Resolve(ServiceVoiceMediaUpload, env),
		Checkout:           Resolve(ServiceCheckout, env),
		B2C:                Resolve(ServiceB2C, env),
		B2B:                Resolve(ServiceB2B, env),
	}
}

// All returns every endpoint URL, in declaration order.
func (e Endpoints) All() []string {
	return []string{
		e.UserData, e.Messaging, e.Subscription, e.SubscriptionCreate,
		e.SubscriptionDelete, e.Airtime, e.VoiceCall, e.VoiceQueueStatus,
		e.VoiceMediaUpload, e.Checkout, e.B2C, e.B2B,
	}
}
