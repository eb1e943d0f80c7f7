package core

import (
	"fmt"
	"strings"
)

// Icon identifies one of the renderable category icons. The set is closed;
// anything else is rejected when a category is written.
type Icon string

const (
	IconWallet         Icon = "Wallet"
	IconBriefcase      Icon = "Briefcase"
	IconTrendingUp     Icon = "TrendingUp"
	IconDollarSign     Icon = "DollarSign"
	IconCreditCard     Icon = "CreditCard"
	IconUtensils       Icon = "Utensils"
	IconCar            Icon = "Car"
	IconShoppingBag    Icon = "ShoppingBag"
	IconReceipt        Icon = "Receipt"
	IconGamepad        Icon = "Gamepad"
	IconHeart          Icon = "Heart"
	IconHome           Icon = "Home"
	IconPlane          Icon = "Plane"
	IconBook           Icon = "Book"
	IconGift           Icon = "Gift"
	IconCoffee         Icon = "Coffee"
	IconSmartphone     Icon = "Smartphone"
	IconLaptop         Icon = "Laptop"
	IconShoppingCart   Icon = "ShoppingCart"
	IconMoreHorizontal Icon = "MoreHorizontal"
	IconPizza          Icon = "Pizza"
	IconGraduationCap  Icon = "GraduationCap"
	IconMusic          Icon = "Music"
	IconFilm           Icon = "Film"
	IconDumbbell       Icon = "Dumbbell"
	IconStethoscope    Icon = "Stethoscope"
	IconHammer         Icon = "Hammer"
	IconZap            Icon = "Zap"
	IconTag            Icon = "Tag"

	// DefaultIcon is assigned when a category is created without one.
	DefaultIcon = IconTag
)

// Icons lists every accepted icon in display order.
var Icons = []Icon{
	IconWallet, IconBriefcase, IconTrendingUp, IconDollarSign, IconCreditCard,
	IconUtensils, IconCar, IconShoppingBag, IconReceipt, IconGamepad,
	IconHeart, IconHome, IconPlane, IconBook, IconGift, IconCoffee,
	IconSmartphone, IconLaptop, IconShoppingCart, IconMoreHorizontal,
	IconPizza, IconGraduationCap, IconMusic, IconFilm, IconDumbbell,
	IconStethoscope, IconHammer, IconZap, IconTag,
}

var iconIndex = func() map[string]Icon {
	m := make(map[string]Icon, len(Icons))
	for _, ic := range Icons {
		m[strings.ToLower(string(ic))] = ic
	}
	return m
}()

// ParseIcon resolves a case-insensitive icon name. An empty name yields
// DefaultIcon.
func ParseIcon(name string) (Icon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultIcon, nil
	}
	ic, ok := iconIndex[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIcon, name)
	}
	return ic, nil
}

// CategoryColors are the selectable category colors.
var CategoryColors = []string{
	"#ef4444", // red
	"#f59e0b", // amber
	"#10b981", // emerald
	"#3b82f6", // blue
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#14b8a6", // teal
	"#f43f5e", // rose
	"#64748b", // slate
	"#06b6d4", // cyan
	"#84cc16", // lime
}

// DefaultCategoryColor is used for charts when a category has no color.
const DefaultCategoryColor = "#64748b"

// ChartColors maps series names to their chart colors.
var ChartColors = map[string]string{
	"income":  "#10b981",
	"expense": "#ef4444",
	"balance": "#3b82f6",
}
