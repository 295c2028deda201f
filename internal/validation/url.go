// Package validation checks CLI input before it is turned into gateway
// requests.
//
// Media URLs are fetched by the provider, not by atctl, so they must be
// publicly reachable: localhost, private and link-local IP literals, and
// cloud metadata hosts are rejected. Host names are not resolved.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

var privateNetworks []*net.IPNet

func init() {
	privateCIDRs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"100.64.0.0/10",
		"169.254.0.0/16",
		"127.0.0.0/8",
		"0.0.0.0/8",
		"fc00::/7",
		"fe80::/10",
		"::1/128",
		"::/128",
	}

	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// ValidateMediaURL checks that rawURL is an absolute, public http(s) URL.
func ValidateMediaURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not reachable by the provider")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("private IP address %s is not reachable by the provider", ip)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	return lowercase == "localhost" || strings.HasSuffix(lowercase, ".localhost")
}

func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	switch lowercase {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
