package bonus

// FactKind names a numeric fact found in a bonus description.
type FactKind int

const (
	FactAmount FactKind = iota
	FactPercent
	FactSpins
)

func (k FactKind) String() string {
	switch k {
	case FactAmount:
		return "amount"
	case FactPercent:
		return "percent"
	case FactSpins:
		return "spins"
	default:
		return "unknown"
	}
}

// phraseBank holds templates per fact kind and the connectors used to join several facts.
// Every template has exactly one %s verb, which receives the fact text verbatim.
// Templates contain no digits of their own.
type phraseBank struct {
	templates  map[FactKind][]string
	connectors []string
}

var banks = map[string]phraseBank{
	"ru": {
		templates: map[FactKind][]string{
			FactAmount: {
				"бонус до %s на первый депозит",
				"до %s бонусом к депозиту",
				"%s сверху к пополнению",
				"прибавка до %s к балансу",
				"бонусные %s на старте",
				"до %s в подарок за депозит",
				"стартовый бонус до %s",
				"%s бонусных денег на счёт",
				"пополнение с бонусом до %s",
				"до %s дополнительно на баланс",
				"приветственные %s",
				"бонус на депозит вплоть до %s",
				"%s к первому пополнению",
				"подарочные %s за регистрацию и депозит",
				"до %s сверх депозита",
				"бонусный баланс до %s",
			},
			FactPercent: {
				"%s к депозиту",
				"бонус %s на пополнение",
				"+%s к первому депозиту",
				"%s сверху к сумме депозита",
				"%s бонуса на старте",
				"прибавка %s к сумме пополнения",
				"бонус в размере %s",
				"%s бонусом к пополнению",
				"приветственные %s к депозиту",
				"к депозиту добавляется %s",
				"%s от суммы пополнения в подарок",
				"щедрые %s на первый депозит",
				"бонус %s за первое пополнение",
				"%s дополнительно к депозиту",
				"стартовые %s к пополнению",
				"пополняй и получай %s сверху",
			},
			FactSpins: {
				"%s в подарок",
				"бесплатные вращения: %s",
				"%s на старте",
				"%s за регистрацию",
				"%s к бонусу",
				"подарочные вращения: %s",
				"%s на популярные слоты",
				"%s сразу после депозита",
				"бонусом идут %s",
				"в придачу %s",
				"дополнительно %s",
				"%s для новых игроков",
				"%s на баланс",
				"фриспины в подарок: %s",
				"%s для разгона",
				"ещё и %s",
			},
		},
		connectors: []string{" + ", " и ", " плюс ", " — ", ", а также ", " / ", ", и ещё ", " & "},
	},
	"es": {
		templates: map[FactKind][]string{
			FactAmount: {
				"bono de hasta %s en tu primer depósito",
				"hasta %s extra para empezar",
				"%s de regalo al depositar",
				"un extra de hasta %s",
				"bienvenida con hasta %s",
				"recarga con bono de hasta %s",
				"hasta %s adicionales en tu saldo",
				"%s de bono de bienvenida",
				"saldo extra de hasta %s",
				"tu primer depósito suma hasta %s",
				"bono inicial de %s",
				"regalo de hasta %s al registrarte",
				"hasta %s más para jugar",
				"%s extra sobre tu depósito",
				"bono de bienvenida: %s",
				"un impulso de hasta %s",
			},
			FactPercent: {
				"%s en tu primer depósito",
				"bono del %s",
				"+%s al depositar",
				"un %s extra en tu recarga",
				"%s de bono de bienvenida",
				"depósito con %s adicional",
				"bono de %s sobre la recarga",
				"%s más en tu saldo",
				"tu depósito crece un %s",
				"%s de regalo al depositar",
				"bienvenida con %s",
				"recarga con %s extra",
				"%s para empezar",
				"primer depósito con %s",
				"un %s adicional",
				"bono inicial del %s",
			},
			FactSpins: {
				"%s de regalo",
				"%s gratis",
				"además %s",
				"%s al registrarte",
				"%s en tragamonedas populares",
				"giros de regalo: %s",
				"%s para empezar",
				"%s tras tu depósito",
				"%s incluidos",
				"%s de bienvenida",
				"extra: %s",
				"%s sin coste",
				"%s para nuevos jugadores",
				"%s en tu cuenta",
				"regalo de %s",
				"%s para calentar",
			},
		},
		connectors: []string{" + ", " y ", " más ", " — ", ", además ", " / ", " & "},
	},
	"it": {
		templates: map[FactKind][]string{
			FactAmount: {
				"bonus fino a %s sul primo deposito",
				"fino a %s extra per iniziare",
				"%s in regalo con il deposito",
				"un extra fino a %s",
				"benvenuto con fino a %s",
				"ricarica con bonus fino a %s",
				"fino a %s in più sul saldo",
				"%s di bonus di benvenuto",
				"saldo extra fino a %s",
				"il primo deposito vale fino a %s in più",
				"bonus iniziale di %s",
				"regalo fino a %s all'iscrizione",
				"fino a %s in più per giocare",
				"%s extra sul deposito",
				"bonus di benvenuto: %s",
				"una spinta fino a %s",
			},
			FactPercent: {
				"%s sul primo deposito",
				"bonus del %s",
				"+%s sulla ricarica",
				"un %s extra sul deposito",
				"%s di bonus di benvenuto",
				"deposito con il %s in più",
				"bonus del %s sulla ricarica",
				"%s in più sul saldo",
				"il deposito cresce del %s",
				"%s in regalo con il deposito",
				"benvenuto con il %s",
				"ricarica con %s extra",
				"%s per iniziare",
				"primo deposito con il %s",
				"un %s aggiuntivo",
				"bonus iniziale del %s",
			},
			FactSpins: {
				"%s in regalo",
				"%s gratis",
				"in più %s",
				"%s all'iscrizione",
				"%s sulle slot più amate",
				"giri in regalo: %s",
				"%s per iniziare",
				"%s dopo il deposito",
				"%s inclusi",
				"%s di benvenuto",
				"extra: %s",
				"%s senza costi",
				"%s per i nuovi giocatori",
				"%s sul conto",
				"un regalo di %s",
				"%s per scaldarsi",
			},
		},
		connectors: []string{" + ", " e ", " più ", " — ", ", inoltre ", " / ", " & "},
	},
	"fr": {
		templates: map[FactKind][]string{
			FactAmount: {
				"bonus jusqu'à %s sur le premier dépôt",
				"jusqu'à %s en plus pour commencer",
				"%s offerts avec le dépôt",
				"un extra jusqu'à %s",
				"bienvenue avec jusqu'à %s",
				"recharge avec bonus jusqu'à %s",
				"jusqu'à %s de plus sur le solde",
				"%s de bonus de bienvenue",
				"solde supplémentaire jusqu'à %s",
				"le premier dépôt rapporte jusqu'à %s de plus",
				"bonus de départ de %s",
				"cadeau jusqu'à %s à l'inscription",
				"jusqu'à %s de plus pour jouer",
				"%s en plus sur le dépôt",
				"bonus de bienvenue : %s",
				"un coup de pouce jusqu'à %s",
			},
			FactPercent: {
				"%s sur le premier dépôt",
				"bonus de %s",
				"+%s sur la recharge",
				"%s supplémentaires sur le dépôt",
				"%s de bonus de bienvenue",
				"dépôt avec %s en plus",
				"bonus de %s sur la recharge",
				"%s de plus sur le solde",
				"le dépôt augmente de %s",
				"%s offerts avec le dépôt",
				"bienvenue avec %s",
				"recharge avec %s en plus",
				"%s pour commencer",
				"premier dépôt avec %s",
				"%s additionnels",
				"bonus de départ de %s",
			},
			FactSpins: {
				"%s offerts",
				"%s gratuits",
				"en plus %s",
				"%s à l'inscription",
				"%s sur les slots populaires",
				"tours offerts : %s",
				"%s pour commencer",
				"%s après le dépôt",
				"%s inclus",
				"%s de bienvenue",
				"extra : %s",
				"%s sans frais",
				"%s pour les nouveaux joueurs",
				"%s sur le compte",
				"un cadeau de %s",
				"%s pour s'échauffer",
			},
		},
		connectors: []string{" + ", " et ", " plus ", " — ", ", ainsi que ", " / ", " & "},
	},
}

const fallbackLanguage = "ru"

func bankFor(lang string) phraseBank {
	if b, ok := banks[lang]; ok {
		return b
	}
	return banks[fallbackLanguage]
}
