package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
)

var ErrUnknownVariant = errors.New("unknown service variant")

// StatusRule определяет, какое локальное правило переопределяет серверный статус.
type StatusRule int

const (
	// RuleActivationWindow: Active превращается в Inactive после окна активации,
	// время активации хранится локально.
	RuleActivationWindow StatusRule = iota + 1
	// RulePendingTimeout: Pending превращается в TimedOut через окно после createdAt.
	RulePendingTimeout
)

// Descriptor описывает вариант услуги: пороги и пути удалённых команд.
type Descriptor struct {
	Variant   models.Variant
	Namespace string
	Rule      StatusRule

	ActiveWindow    time.Duration
	CancelGrace     time.Duration
	CodeAwakeWindow time.Duration

	ListPath     string
	CancelPath   string
	ActivatePath string
	ReusePath    string
}

// Descriptors - таблица вариантов. Middle, Long и EmptySim отличаются только
// пространством имён и путями.
var Descriptors = map[models.Variant]Descriptor{
	models.VariantShort: {
		Variant:         models.VariantShort,
		Namespace:       "short_activation_times",
		Rule:            RulePendingTimeout,
		ActiveWindow:    5 * time.Minute,
		CancelGrace:     2*time.Minute + 45*time.Second,
		CodeAwakeWindow: 5 * time.Minute,
		ListPath:        "/api/short/orders",
		CancelPath:      "/api/short/cancel",
		ReusePath:       "/api/short/reuse",
	},
	models.VariantMiddle:   windowDescriptor(models.VariantMiddle, "middle"),
	models.VariantLong:     windowDescriptor(models.VariantLong, "long"),
	models.VariantEmptySim: windowDescriptor(models.VariantEmptySim, "empty-sim"),
}

func windowDescriptor(variant models.Variant, slug string) Descriptor {
	return Descriptor{
		Variant:      variant,
		Namespace:    string(variant) + "_activation_times",
		Rule:         RuleActivationWindow,
		ActiveWindow: 3 * time.Minute,
		CancelGrace:  time.Minute,
		ListPath:     "/api/" + slug + "/orders",
		CancelPath:   "/api/" + slug + "/cancel",
		ActivatePath: "/api/" + slug + "/activate",
	}
}

// DescriptorFor возвращает описание варианта.
func DescriptorFor(variant models.Variant) (Descriptor, error) {
	d, ok := Descriptors[variant]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return d, nil
}

// Namespaces перечисляет пространства имён хранилища для всех вариантов.
func Namespaces() []string {
	out := make([]string, 0, len(Descriptors))
	for _, variant := range []models.Variant{
		models.VariantShort,
		models.VariantMiddle,
		models.VariantLong,
		models.VariantEmptySim,
	} {
		out = append(out, Descriptors[variant].Namespace)
	}
	return out
}
