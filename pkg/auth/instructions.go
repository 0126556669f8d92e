package auth

import (
	"fmt"
	"strings"
)

// ShowCookieExtractionGuide displays step-by-step instructions for
// extracting the session cookies from a logged-in browser
func ShowCookieExtractionGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 X SESSION COOKIE EXTRACTION GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs your X session cookies to access the timeline API.")
	fmt.Println("Follow these steps to extract them from your browser:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open X in your browser")
	fmt.Println("   - Go to https://x.com")
	fmt.Println("   - Log in with your account")
	fmt.Println("   - Make sure you can see your home timeline")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Open Developer Tools")
	fmt.Println("   • Chrome/Edge/Brave: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Firefox: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Safari: Enable Developer menu in Preferences, then Cmd+Option+I")
	fmt.Println()

	fmt.Println("🍪 STEP 3: Find your cookies")
	fmt.Println("   1. Go to 'Application' tab (Chrome) or 'Storage' tab (Firefox)")
	fmt.Println("   2. In the left sidebar, expand 'Cookies'")
	fmt.Println("   3. Click on 'https://x.com'")
	fmt.Println("   4. Look for these cookies in the list:")
	fmt.Println()

	fmt.Println("🔑 STEP 4: Copy these specific values:")
	fmt.Println("   ┌─────────────┬──────────────────────────────────────────────┐")
	fmt.Println("   │ Cookie Name │ What it looks like                           │")
	fmt.Println("   ├─────────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ auth_token  │ 40-character hex string                      │")
	fmt.Println("   │             │ Example: 8a2f1c...                           │")
	fmt.Println("   ├─────────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ ct0         │ Long hex string (also the CSRF token)        │")
	fmt.Println("   │             │ Example: f3b9d7e1a0...                       │")
	fmt.Println("   └─────────────┴──────────────────────────────────────────────┘")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Copy the ENTIRE value (everything after the = sign)")
	fmt.Println("   • Don't include quotes or semicolons")
	fmt.Println("   • These cookies expire when you log out, so stay logged in")
	fmt.Println("   • Use a secondary account for scraping to protect your main account")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • These cookies give FULL access to your X account")
	fmt.Println("   • NEVER share them with anyone")
	fmt.Println("   • Store them securely (this tool encrypts them)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickExtractGuide shows a condensed version for experienced users
func ShowQuickExtractGuide() {
	fmt.Println("\n🍪 Quick Guide: F12 → Application tab → Cookies → https://x.com")
	fmt.Println("   Need: auth_token=... and ct0=...")
	fmt.Println("   Type 'help' for detailed instructions")
}
