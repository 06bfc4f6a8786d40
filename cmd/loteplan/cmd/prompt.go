package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// terminalPrompter asks for one-time codes on the terminal. An empty input
// cancels the challenge.
type terminalPrompter struct{}

func (terminalPrompter) Code(ch transaction.PendingChallenge) (string, bool) {
	if ch.LastError != "" {
		fmt.Println(ch.LastError)
	}
	code := promptLine("Código de confirmación (6 dígitos, vacío para cancelar): ")
	if code == "" {
		return "", false
	}
	return code, true
}

// consoleRemediator tells the user which security step the server requires
// before the transaction can proceed.
type consoleRemediator struct{}

func (consoleRemediator) SecurityAction(action string, verification map[string]any) {
	switch action {
	case "enable_2fa":
		fmt.Println("El servidor requiere verificación en dos pasos. Actívala en la sección de seguridad del portal.")
	default:
		fmt.Printf("El servidor requiere una acción de seguridad: %s\n", action)
	}
	if kyc, ok := verification["kyc"].(string); ok && kyc != "" && kyc != "approved" {
		fmt.Printf("Estado de verificación KYC: %s\n", kyc)
	}
}
