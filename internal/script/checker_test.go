package script

import (
	"errors"
	"testing"
)

const validDriveScript = `from Robot import *
rover = Rover()
rover.forward(50)
time.sleep(2)
rover.stop()
rover.cleanup()`

func TestCheckValidScript(t *testing.T) {
	warnings, err := Check(DefaultContract(), validDriveScript, false)
	if err != nil {
		t.Fatalf("expected valid script, got %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestCheckLeadingCommentsAndBlankLines(t *testing.T) {
	body := `# drive forward and stop

# uses the default speed
from Robot import *
rover = Rover()
rover.forward(30)
rover.cleanup()`

	if _, err := Check(DefaultContract(), body, false); err != nil {
		t.Fatalf("comments and blank lines before the import must pass: %v", err)
	}
}

func TestCheckMissingImport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no import at all", "rover = Rover()\nrover.cleanup()"},
		{"wrong import", "import Robot\nrover = Rover()\nrover.cleanup()"},
		{"statement before import", "x = 1\nfrom Robot import *\nrover = Rover()\nrover.cleanup()"},
		{"empty body", ""},
		{"comments only", "# nothing here\n\n# still nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(DefaultContract(), tt.body, false)
			assertContractReason(t, err, ReasonMissingImport)
		})
	}
}

func TestCheckControllerConstruction(t *testing.T) {
	t.Run("missing controller", func(t *testing.T) {
		body := "from Robot import *\nprint('hi')"
		_, err := Check(DefaultContract(), body, false)
		assertContractReason(t, err, ReasonMissingController)
	})

	t.Run("multiple controllers", func(t *testing.T) {
		body := `from Robot import *
a = Rover()
b = Rover()
a.cleanup()`
		_, err := Check(DefaultContract(), body, false)
		assertContractReason(t, err, ReasonMultipleControllers)
	})

	t.Run("call before construction", func(t *testing.T) {
		body := `from Robot import *
rover.forward(10)
rover = Rover()
rover.cleanup()`
		_, err := Check(DefaultContract(), body, false)
		assertContractReason(t, err, ReasonCallBeforeConstruction)
	})
}

func TestCheckMissingCleanup(t *testing.T) {
	body := `from Robot import *
rover = Rover()
rover.forward(20)`

	t.Run("terminal run requires cleanup", func(t *testing.T) {
		_, err := Check(DefaultContract(), body, false)
		assertContractReason(t, err, ReasonMissingCleanup)
	})

	t.Run("continuing run waives cleanup", func(t *testing.T) {
		warnings, err := Check(DefaultContract(), body, true)
		if err != nil {
			t.Fatalf("continuing script must not require cleanup: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}
	})

	t.Run("cleanup not last", func(t *testing.T) {
		trailing := `from Robot import *
rover = Rover()
rover.cleanup()
rover.forward(20)`
		_, err := Check(DefaultContract(), trailing, false)
		assertContractReason(t, err, ReasonMissingCleanup)
	})
}

func TestCheckUnknownCapabilityWarns(t *testing.T) {
	body := `from Robot import *
rover = Rover()
rover.do_a_barrel_roll()
rover.cleanup()`

	warnings, err := Check(DefaultContract(), body, false)
	if err != nil {
		t.Fatalf("unknown capability must not be fatal: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if warnings[0].Code != WarnUnknownCapability {
		t.Errorf("expected %s, got %s", WarnUnknownCapability, warnings[0].Code)
	}
	if warnings[0].Line != 3 {
		t.Errorf("expected warning on line 3, got line %d", warnings[0].Line)
	}
}

func TestCheckExtendedCapabilitySet(t *testing.T) {
	contract := DefaultContract().WithCapabilities(map[string]string{
		"do_a_barrel_roll": CapMovement,
	})

	body := `from Robot import *
rover = Rover()
rover.do_a_barrel_roll()
rover.cleanup()`

	warnings, err := Check(contract, body, false)
	if err != nil {
		t.Fatalf("extended capability must pass: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for extended capability, got %v", warnings)
	}
}

func TestCheckOtherReceiversPassThrough(t *testing.T) {
	body := `from Robot import *
rover = Rover()
rover.forward(10)
time.sleep(1.5)
math.floor(3.7)
rover.cleanup()`

	warnings, err := Check(DefaultContract(), body, false)
	if err != nil {
		t.Fatalf("calls on other receivers must pass through: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestCheckDenylist(t *testing.T) {
	contract := DefaultContract().WithDenylist([]string{"os.system"})

	body := `from Robot import *
rover = Rover()
os.system("rm -rf /")
rover.cleanup()`

	_, err := Check(contract, body, false)
	assertContractReason(t, err, ReasonDisallowedConstruct)

	var contractErr *ContractError
	if errors.As(err, &contractErr) && contractErr.Line != 3 {
		t.Errorf("expected violation on line 3, got line %d", contractErr.Line)
	}
}

func TestCheckSuspensionAndCameraCapabilities(t *testing.T) {
	body := `from Robot import *
rover = Rover()
rover.setup_sun_position()
rover.capture_image()
rover.set_servo_positions(10, 20, 30)
rover.cleanup()`

	warnings, err := Check(DefaultContract(), body, false)
	if err != nil {
		t.Fatalf("documented capabilities must pass: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func assertContractReason(t *testing.T, err error, reason string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected contract error, got nil")
	}
	if !errors.Is(err, ErrContract) {
		t.Fatalf("expected error to unwrap to ErrContract, got %v", err)
	}
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError, got %v", err)
	}
	if contractErr.Reason != reason {
		t.Errorf("expected reason %s, got %s", reason, contractErr.Reason)
	}
}
